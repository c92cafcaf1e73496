package aur

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/th3gh0s8/aura/pkg/errors"
)

// gitCall records one stubbed git invocation.
type gitCall struct {
	dir  string
	args []string
}

func stubCloner(t *testing.T, calls *[]gitCall, fail error) *Cloner {
	t.Helper()
	c := NewCloner(t.TempDir())
	c.run = func(ctx context.Context, dir string, args ...string) error {
		*calls = append(*calls, gitCall{dir: dir, args: args})
		if fail != nil {
			return fail
		}
		// Simulate a successful clone by creating the target directory.
		if len(args) > 0 && args[0] == "clone" {
			return os.MkdirAll(args[len(args)-1], 0o755)
		}
		return nil
	}
	return c
}

func TestLocate(t *testing.T) {
	c := NewCloner(t.TempDir())

	if _, ok := c.Locate("spotify"); ok {
		t.Error("Locate should miss for an absent clone")
	}

	path := filepath.Join(c.Root, "spotify")
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
	got, ok := c.Locate("spotify")
	if !ok {
		t.Fatal("Locate should find the existing clone")
	}
	if got != path {
		t.Errorf("Locate = %q, want %q", got, path)
	}

	// A plain file is not a working tree.
	if err := os.WriteFile(filepath.Join(c.Root, "notadir"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Locate("notadir"); ok {
		t.Error("Locate should not match a regular file")
	}
}

func TestCloneOrUpdateClonesWhenAbsent(t *testing.T) {
	var calls []gitCall
	c := stubCloner(t, &calls, nil)

	path, err := c.CloneOrUpdate(context.Background(), "spotify")
	if err != nil {
		t.Fatalf("CloneOrUpdate error: %v", err)
	}
	if want := filepath.Join(c.Root, "spotify"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	if len(calls) != 1 {
		t.Fatalf("git calls = %d, want 1", len(calls))
	}
	if calls[0].args[0] != "clone" {
		t.Errorf("args = %v, want clone", calls[0].args)
	}
	if url := calls[0].args[1]; !strings.HasSuffix(url, "/spotify.git") {
		t.Errorf("clone URL = %q, want */spotify.git", url)
	}
}

func TestCloneOrUpdateReusesExistingClone(t *testing.T) {
	var calls []gitCall
	c := stubCloner(t, &calls, nil)
	if err := os.MkdirAll(filepath.Join(c.Root, "spotify"), 0o755); err != nil {
		t.Fatal(err)
	}

	path, err := c.CloneOrUpdate(context.Background(), "spotify")
	if err != nil {
		t.Fatalf("CloneOrUpdate error: %v", err)
	}
	if want := filepath.Join(c.Root, "spotify"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if len(calls) != 0 {
		t.Errorf("git calls = %d, want 0 (existing clone is used as-is)", len(calls))
	}
}

func TestCloneOrUpdateRefreshPullsExistingClone(t *testing.T) {
	var calls []gitCall
	c := stubCloner(t, &calls, nil)
	c.Refresh = true
	clone := filepath.Join(c.Root, "spotify")
	if err := os.MkdirAll(clone, 0o755); err != nil {
		t.Fatal(err)
	}

	if _, err := c.CloneOrUpdate(context.Background(), "spotify"); err != nil {
		t.Fatalf("CloneOrUpdate error: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("git calls = %d, want 1", len(calls))
	}
	if calls[0].args[0] != "pull" || calls[0].dir != clone {
		t.Errorf("call = %+v, want pull in %q", calls[0], clone)
	}
}

func TestCloneOrUpdateGitFailure(t *testing.T) {
	var calls []gitCall
	c := stubCloner(t, &calls, os.ErrPermission)

	_, err := c.CloneOrUpdate(context.Background(), "spotify")
	if !errors.Is(err, errors.ErrCodeGitClone) {
		t.Errorf("err = %v, want GIT_CLONE_FAILED", err)
	}
}

func TestCloneOrUpdateRejectsBadNames(t *testing.T) {
	var calls []gitCall
	c := stubCloner(t, &calls, nil)

	_, err := c.CloneOrUpdate(context.Background(), "../escape")
	if !errors.Is(err, errors.ErrCodeInvalidPackage) {
		t.Errorf("err = %v, want INVALID_PACKAGE", err)
	}
	if len(calls) != 0 {
		t.Errorf("git calls = %d, want 0", len(calls))
	}
}
