// Package resolve implements recursive dependency resolution across the
// two package universes of an Arch-style system: the official repositories
// and the AUR.
//
// Given a batch of requested names, [Resolver.Resolve] classifies every
// transitively reachable package as already satisfied, installable from the
// official repositories, or buildable from an AUR source tree. The
// dependency graph is discovered mid-traversal by fetching and parsing
// .SRCINFO manifests, so resolution fans out concurrently per package and
// folds sibling failures into one error collection instead of stopping at
// the first.
package resolve

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/th3gh0s8/aura/pkg/alpm"
	"github.com/th3gh0s8/aura/pkg/errors"
	"github.com/th3gh0s8/aura/pkg/integrations/faur"
	"github.com/th3gh0s8/aura/pkg/srcinfo"
)

// Normalize strips version demands from a dependency string:
// "gcc6=6.5.0-7" becomes "gcc6", "glibc>=2.25" becomes "glibc".
// The split happens at the first '=' or '>', whichever comes first.
func Normalize(raw string) string {
	if i := strings.IndexAny(raw, "=>"); i >= 0 {
		return raw[:i]
	}
	return raw
}

// Fetcher queries AUR package metadata. *faur.Client implements it.
type Fetcher interface {
	// Info retrieves metadata for exactly-named packages. Unknown names
	// are absent from the result rather than errors.
	Info(ctx context.Context, names []string, refresh bool) ([]faur.Package, error)
	// Search performs a full-text search, used as a fallback to find a
	// package that provides a requested name.
	Search(ctx context.Context, terms []string, refresh bool) ([]faur.Package, error)
}

// Cloner materializes AUR source trees. *aur.Cloner implements it.
type Cloner interface {
	// Locate finds an existing working tree without touching the network.
	Locate(name string) (string, bool)
	// CloneOrUpdate returns a working tree, cloning it if absent.
	CloneOrUpdate(ctx context.Context, name string) (string, error)
}

// Options configures a Resolver.
type Options struct {
	// Refresh bypasses the metadata cache for AUR lookups.
	Refresh bool

	// RefreshClones pulls already-cloned source trees before parsing
	// their manifests. Off by default: a stale manifest is preferred
	// over one network round-trip per package.
	RefreshClones bool

	// Logger receives progress and debug output (optional).
	Logger func(format string, args ...any)
}

// withDefaults returns a copy of Options with zero values replaced.
func (o Options) withDefaults() Options {
	opts := o
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// Resolver determines which packages must be installed or built to satisfy
// a set of requested names. All collaborator calls go through small
// interfaces, so the resolver itself performs no I/O of its own.
type Resolver struct {
	pool  *alpm.Pool
	fetch Fetcher
	clone Cloner
	opts  Options

	// parse reads a .SRCINFO under a working tree. Replaceable in tests.
	parse func(path string) (*srcinfo.Srcinfo, error)
}

// New creates a Resolver using the given database pool, metadata fetcher,
// and source-tree cloner.
func New(pool *alpm.Pool, fetch Fetcher, clone Cloner, opts Options) *Resolver {
	return &Resolver{
		pool:  pool,
		fetch: fetch,
		clone: clone,
		opts:  opts.withDefaults(),
		parse: srcinfo.ParseFile,
	}
}

// Resolve classifies the requested packages and their transitive
// dependencies. It returns either a complete [Resolution] or an
// [ErrorList] carrying every failure encountered across the traversal --
// never a partial result.
func (r *Resolver) Resolve(ctx context.Context, names []string) (*Resolution, error) {
	res := newResolution()
	acc := newAccumulator()

	run := uuid.NewString()
	start := time.Now()
	r.opts.Logger("resolution %s: %d requested packages", run, len(names))

	r.fanOut(ctx, res, acc, "", names)

	if err := acc.result(); err != nil {
		return nil, err
	}
	r.opts.Logger("resolution %s: %d to install, %d to build, %d satisfied (%s)",
		run, len(res.toInstall), len(res.toBuild), len(res.satisfied),
		time.Since(start).Round(time.Millisecond))
	return res, nil
}

// fanOut resolves each name in its own goroutine and waits for all of
// them. Failures land in the accumulator; siblings always run to
// completion.
func (r *Resolver) fanOut(ctx context.Context, res *Resolution, acc *accumulator, parent string, names []string) {
	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer acc.recoverPanic()
			if err := r.resolveOne(ctx, res, acc, parent, name); err != nil {
				acc.add(err)
			}
		}()
	}
	wg.Wait()
}

// resolveOne classifies a single package name: satisfied locally, official,
// or buildable from the AUR. Official and buildable packages recurse over
// their newly discovered dependencies.
func (r *Resolver) resolveOne(ctx context.Context, res *Resolution, acc *accumulator, parent, raw string) error {
	name := Normalize(raw)

	// Best-effort dedup: the check and the eventual insert are not one
	// atomic step, so two branches can race past here for the same name.
	// Insertions are idempotent, so the worst case is duplicated work.
	if res.seen(name) {
		return nil
	}

	r.opts.Logger("considering %s", name)

	satisfied, official, officialOK, err := r.queryDB(ctx, name)
	if err != nil {
		return err
	}

	switch {
	case satisfied:
		res.addSatisfied(name)
		return nil

	case officialOK:
		r.opts.Logger("%s is official (as %s)", name, official.Name)
		res.addOfficial(official.Name)
		r.fanOut(ctx, res, acc, official.Name, official.Depends)
		return nil

	default:
		return r.resolveBuildable(ctx, res, acc, parent, name)
	}
}

// queryDB leases one database handle, answers both the local-install and
// official-repository questions, and releases the handle before any
// recursion can happen. Holding a handle across recursion would deadlock a
// small pool.
func (r *Resolver) queryDB(ctx context.Context, name string) (satisfied bool, rec alpm.OfficialRecord, ok bool, err error) {
	db, release, err := r.pool.Lease(ctx)
	if err != nil {
		return false, alpm.OfficialRecord{}, false, err
	}
	defer release()

	start := time.Now()
	if db.LocalSatisfies(name) {
		r.opts.Logger("%s satisfied locally (%s)", name, time.Since(start).Round(time.Microsecond))
		return true, alpm.OfficialRecord{}, false, nil
	}
	rec, ok = db.SyncSatisfier(name)
	return false, rec, ok, nil
}

// resolveBuildable handles the AUR path: locate or fetch the source tree,
// parse its manifest, record the buildable with its provided aliases in one
// state update, then recurse over its aggregate dependency set.
func (r *Resolver) resolveBuildable(ctx context.Context, res *Resolution, acc *accumulator, parent, name string) error {
	r.opts.Logger("%s is buildable", name)

	path, err := r.sourceTree(ctx, parent, name)
	if err != nil {
		return err
	}

	info, err := r.parse(filepath.Join(path, ".SRCINFO"))
	if err != nil {
		return err
	}

	deps := make([]string, 0, len(info.AllDepends()))
	for _, d := range info.AllDepends() {
		deps = append(deps, Normalize(d))
	}
	aliases := make([]string, 0, len(info.ProvidedNames()))
	for _, p := range info.ProvidedNames() {
		aliases = append(aliases, Normalize(p))
	}

	// The buildable and its aliases must become visible together:
	// a dependent checking "seen" for an alias must never observe the
	// buildable without its aliases.
	res.addBuildable(Buildable{Name: info.Base, Deps: dedupSorted(deps)}, aliases)

	r.fanOut(ctx, res, acc, info.Base, deps)
	return nil
}

// sourceTree implements the locate-or-fetch-or-clone sequence: an existing
// clone for the exact name wins, then a direct metadata lookup, then a
// provider search, and finally a fresh clone of the resolved package base.
func (r *Resolver) sourceTree(ctx context.Context, parent, name string) (string, error) {
	if path, ok := r.clone.Locate(name); ok {
		if r.opts.RefreshClones {
			return r.clone.CloneOrUpdate(ctx, name)
		}
		return path, nil
	}

	pkgs, err := r.fetch.Info(ctx, []string{name}, r.opts.Refresh)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeAURFetch, err, "fetching metadata for %s", name)
	}

	var base string
	if len(pkgs) > 0 {
		base = pkgs[0].PackageBase
	} else {
		r.opts.Logger("no exact match for %s, trying provider search", name)
		results, err := r.fetch.Search(ctx, []string{name}, r.opts.Refresh)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeAURFetch, err, "searching for a provider of %s", name)
		}
		for _, p := range results {
			for _, prov := range p.Provides {
				if Normalize(prov) == name {
					base = p.PackageBase
					break
				}
			}
			if base != "" {
				break
			}
		}
	}
	if base == "" {
		return "", notFound(parent, name)
	}

	if path, ok := r.clone.Locate(base); ok && !r.opts.RefreshClones {
		return path, nil
	}
	return r.clone.CloneOrUpdate(ctx, base)
}

// notFound builds the unresolvable-name error, attributing the dependency
// to its parent when one is known.
func notFound(parent, name string) error {
	if parent != "" {
		return errors.New(errors.ErrCodePackageNotFound, "%s, required by %s, is not a known package", name, parent)
	}
	return errors.New(errors.ErrCodePackageNotFound, "%s is not a known package", name)
}

func dedupSorted(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out
}
