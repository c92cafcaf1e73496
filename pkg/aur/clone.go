// Package aur materializes AUR source trees as local git clones.
//
// Each package base gets one working tree under a shared clone root,
// cloned from the AUR's git hosting. Existing clones are reused as-is by
// default: resolution should work offline and fast, at the cost of
// possibly stale manifests. Set [Cloner.Refresh] to pull existing clones
// before use.
package aur

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/th3gh0s8/aura/pkg/errors"
)

const defaultBaseURL = "https://aur.archlinux.org"

// Cloner manages AUR package clones under a single root directory.
type Cloner struct {
	// Root is the directory holding one clone per package base.
	Root string

	// BaseURL is the git host to clone from. Defaults to the AUR.
	BaseURL string

	// Refresh pulls existing clones before using them. Off by default:
	// a stale clone is preferred over a network round-trip per package.
	Refresh bool

	// run executes a git invocation in dir. Replaceable in tests.
	run func(ctx context.Context, dir string, args ...string) error
}

// NewCloner creates a Cloner rooted at root.
func NewCloner(root string) *Cloner {
	return &Cloner{
		Root:    root,
		BaseURL: defaultBaseURL,
		run:     runGit,
	}
}

// Locate reports whether a working tree for name already exists under the
// clone root. It never touches the network.
func (c *Cloner) Locate(name string) (string, bool) {
	path := filepath.Join(c.Root, name)
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return path, true
}

// CloneOrUpdate returns a working tree for name, cloning it if absent.
// An existing tree is pulled first only when Refresh is set.
func (c *Cloner) CloneOrUpdate(ctx context.Context, name string) (string, error) {
	if err := errors.ValidatePackageName(name); err != nil {
		return "", err
	}

	if path, ok := c.Locate(name); ok {
		if c.Refresh {
			if err := c.git(ctx, path, "pull", "--ff-only"); err != nil {
				return "", errors.Wrap(errors.ErrCodeGitClone, err, "updating clone of %s", name)
			}
		}
		return path, nil
	}

	if err := os.MkdirAll(c.Root, 0o755); err != nil {
		return "", errors.Wrap(errors.ErrCodeGitClone, err, "creating clone root %s", c.Root)
	}

	dest := filepath.Join(c.Root, name)
	url := c.cloneURL(name)
	if err := c.git(ctx, c.Root, "clone", url, dest); err != nil {
		return "", errors.Wrap(errors.ErrCodeGitClone, err, "cloning %s", name)
	}
	return dest, nil
}

func (c *Cloner) cloneURL(name string) string {
	base := c.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	return fmt.Sprintf("%s/%s.git", strings.TrimSuffix(base, "/"), name)
}

func (c *Cloner) git(ctx context.Context, dir string, args ...string) error {
	run := c.run
	if run == nil {
		run = runGit
	}
	return run(ctx, dir, args...)
}

func runGit(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}
