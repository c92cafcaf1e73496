package resolve

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/th3gh0s8/aura/pkg/alpm"
	"github.com/th3gh0s8/aura/pkg/errors"
	"github.com/th3gh0s8/aura/pkg/integrations/faur"
	"github.com/th3gh0s8/aura/pkg/srcinfo"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"gcc6=6.5.0-7", "gcc6"},
		{"glibc>=2.25", "glibc"},
		{"firefox", "firefox"},
		{"libfoo.so", "libfoo.so"},
		{"=weird", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// fakeDB answers database queries from fixed maps. All fields are
// read-only after construction, so concurrent use is safe.
type fakeDB struct {
	installed map[string]bool
	official  map[string]alpm.OfficialRecord // keyed by query name, provides aliases included
}

func (f *fakeDB) LocalSatisfies(name string) bool { return f.installed[name] }

func (f *fakeDB) SyncSatisfier(name string) (alpm.OfficialRecord, bool) {
	rec, ok := f.official[name]
	return rec, ok
}

func (f *fakeDB) Close() error { return nil }

// fakeFetcher serves AUR metadata from fixed maps and records lookups.
type fakeFetcher struct {
	mu        sync.Mutex
	info      map[string][]faur.Package
	search    map[string][]faur.Package
	infoErr   map[string]error
	infoCalls []string
}

func (f *fakeFetcher) Info(ctx context.Context, names []string, refresh bool) ([]faur.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []faur.Package
	for _, name := range names {
		f.infoCalls = append(f.infoCalls, name)
		if err := f.infoErr[name]; err != nil {
			return nil, err
		}
		out = append(out, f.info[name]...)
	}
	return out, nil
}

func (f *fakeFetcher) Search(ctx context.Context, terms []string, refresh bool) ([]faur.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []faur.Package
	for _, term := range terms {
		out = append(out, f.search[term]...)
	}
	return out, nil
}

func (f *fakeFetcher) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.infoCalls)
}

// fakeCloner tracks which trees exist and which were cloned.
type fakeCloner struct {
	mu       sync.Mutex
	existing map[string]bool
	cloned   []string
}

func (f *fakeCloner) Locate(name string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existing[name] {
		return filepath.Join("clones", name), true
	}
	return "", false
}

func (f *fakeCloner) CloneOrUpdate(ctx context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cloned = append(f.cloned, name)
	if f.existing == nil {
		f.existing = make(map[string]bool)
	}
	f.existing[name] = true
	return filepath.Join("clones", name), nil
}

// fixture bundles the fake collaborators behind a Resolver. Manifests are
// raw .SRCINFO text keyed by package base, parsed on demand so the real
// parser is exercised.
type fixture struct {
	installed map[string]bool
	official  map[string]alpm.OfficialRecord
	fetch     *fakeFetcher
	clone     *fakeCloner
	manifests map[string]string
}

func newFixture() *fixture {
	return &fixture{
		installed: make(map[string]bool),
		official:  make(map[string]alpm.OfficialRecord),
		fetch: &fakeFetcher{
			info:    make(map[string][]faur.Package),
			search:  make(map[string][]faur.Package),
			infoErr: make(map[string]error),
		},
		clone:     &fakeCloner{existing: make(map[string]bool)},
		manifests: make(map[string]string),
	}
}

// aurPackage registers an AUR package base with a manifest, reachable by
// direct info lookup.
func (f *fixture) aurPackage(base, manifest string) {
	f.fetch.info[base] = []faur.Package{{Name: base, PackageBase: base}}
	f.manifests[base] = manifest
}

func (f *fixture) resolver(t *testing.T, opts Options) *Resolver {
	t.Helper()
	pool, err := alpm.NewPool(func() (alpm.DB, error) {
		return &fakeDB{installed: f.installed, official: f.official}, nil
	}, 4, time.Second)
	if err != nil {
		t.Fatalf("NewPool error: %v", err)
	}
	t.Cleanup(func() { _ = pool.Close() })

	r := New(pool, f.fetch, f.clone, opts)
	r.parse = func(path string) (*srcinfo.Srcinfo, error) {
		base := filepath.Base(filepath.Dir(path))
		src, ok := f.manifests[base]
		if !ok {
			return nil, errors.New(errors.ErrCodeSrcinfoParse, "no manifest for %s", base)
		}
		return srcinfo.Parse(strings.NewReader(src))
	}
	return r
}

const auraManifest = `pkgbase = aura
	pkgver = 3.2.9
	pkgrel = 1
	makedepends = rust
	depends = gcc-libs
	depends = git
	depends = glibc

pkgname = aura
`

// setupAuraWorld builds a scenario touching all three classifications:
// aura is an AUR package whose dependencies span the official repos
// (rust, gcc-libs, git -> curl) and the local system (glibc).
func setupAuraWorld() *fixture {
	f := newFixture()
	f.installed["glibc"] = true
	f.official["rust"] = alpm.OfficialRecord{Name: "rust"}
	f.official["gcc-libs"] = alpm.OfficialRecord{Name: "gcc-libs"}
	f.official["git"] = alpm.OfficialRecord{Name: "git", Depends: []string{"curl"}}
	f.official["curl"] = alpm.OfficialRecord{Name: "curl"}
	f.aurPackage("aura", auraManifest)
	return f
}

func TestResolveClassification(t *testing.T) {
	f := setupAuraWorld()
	r := f.resolver(t, Options{})

	res, err := r.Resolve(context.Background(), []string{"aura"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	build := res.ToBuild()
	if len(build) != 1 || build[0].Name != "aura" {
		t.Fatalf("ToBuild = %+v, want just aura", build)
	}
	if want := []string{"gcc-libs", "git", "glibc", "rust"}; !slices.Equal(build[0].Deps, want) {
		t.Errorf("aura deps = %v, want %v", build[0].Deps, want)
	}

	var installNames []string
	for _, o := range res.ToInstall() {
		installNames = append(installNames, o.Name)
	}
	if want := []string{"curl", "gcc-libs", "git", "rust"}; !slices.Equal(installNames, want) {
		t.Errorf("ToInstall = %v, want %v", installNames, want)
	}

	if want := []string{"glibc"}; !slices.Equal(res.Satisfied(), want) {
		t.Errorf("Satisfied = %v, want %v", res.Satisfied(), want)
	}

	// Classification exclusivity: no name in more than one set.
	seen := make(map[string]int)
	for _, o := range res.ToInstall() {
		seen[o.Name]++
	}
	for _, b := range res.ToBuild() {
		seen[b.Name]++
	}
	for _, s := range res.Satisfied() {
		seen[s]++
	}
	for name, count := range seen {
		if count > 1 {
			t.Errorf("%s appears in %d result sets, want 1", name, count)
		}
	}
}

func TestResolveDeduplicatesRepeatedRequests(t *testing.T) {
	f := setupAuraWorld()
	r := f.resolver(t, Options{})

	res, err := r.Resolve(context.Background(), []string{"aura", "aura", "git"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	if got := len(res.ToBuild()); got != 1 {
		t.Errorf("len(ToBuild) = %d, want 1", got)
	}
	var installNames []string
	for _, o := range res.ToInstall() {
		installNames = append(installNames, o.Name)
	}
	if want := []string{"curl", "gcc-libs", "git", "rust"}; !slices.Equal(installNames, want) {
		t.Errorf("ToInstall = %v, want %v", installNames, want)
	}
}

func TestResolveLocalPriority(t *testing.T) {
	// A name both installed locally and available officially must land in
	// satisfied, never to_install, and must trigger no network call.
	f := newFixture()
	f.installed["git"] = true
	f.official["git"] = alpm.OfficialRecord{Name: "git", Depends: []string{"curl"}}

	r := f.resolver(t, Options{})
	res, err := r.Resolve(context.Background(), []string{"git"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	if want := []string{"git"}; !slices.Equal(res.Satisfied(), want) {
		t.Errorf("Satisfied = %v, want %v", res.Satisfied(), want)
	}
	if len(res.ToInstall()) != 0 {
		t.Errorf("ToInstall = %v, want empty", res.ToInstall())
	}
	if calls := f.fetch.calls(); len(calls) != 0 {
		t.Errorf("AUR lookups = %v, want none", calls)
	}
}

func TestResolveVersionDemandsAreStripped(t *testing.T) {
	f := newFixture()
	f.installed["glibc"] = true

	r := f.resolver(t, Options{})
	res, err := r.Resolve(context.Background(), []string{"glibc>=2.25"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if want := []string{"glibc"}; !slices.Equal(res.Satisfied(), want) {
		t.Errorf("Satisfied = %v, want %v", res.Satisfied(), want)
	}
}

const gcc6Manifest = `pkgbase = gcc6
	pkgver = 6.5.0
	pkgrel = 7
	makedepends = binutils

pkgname = gcc6
	depends = gcc6-libs=6.5.0-7
	provides = gcc-6

pkgname = gcc6-libs
	depends = glibc>=2.25
	provides = libgcc-6
`

func TestResolveSplitPackageAliases(t *testing.T) {
	// gcc6's own dependency gcc6-libs is provided by its split packages;
	// resolution must account for it via the alias set instead of trying
	// to fetch or build it separately.
	f := newFixture()
	f.installed["glibc"] = true
	f.official["binutils"] = alpm.OfficialRecord{Name: "binutils"}
	f.aurPackage("gcc6", gcc6Manifest)

	r := f.resolver(t, Options{})
	res, err := r.Resolve(context.Background(), []string{"gcc6"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	build := res.ToBuild()
	if len(build) != 1 || build[0].Name != "gcc6" {
		t.Fatalf("ToBuild = %+v, want just gcc6", build)
	}
	for _, call := range f.fetch.calls() {
		if call != "gcc6" {
			t.Errorf("unexpected AUR lookup for %q; aliases must not be re-resolved", call)
		}
	}
}

func TestResolveProviderSearchFallback(t *testing.T) {
	// No exact AUR entry for the requested name, but a search result
	// provides it; its package base is what gets cloned and built.
	f := newFixture()
	f.fetch.search["cros-gcc"] = []faur.Package{
		{Name: "unrelated", PackageBase: "unrelated", Provides: []string{"something-else"}},
		{Name: "cros-gcc-full", PackageBase: "cros-gcc-base", Provides: []string{"cros-gcc=1.0"}},
	}
	f.manifests["cros-gcc-base"] = `pkgbase = cros-gcc-base
	pkgver = 1.0

pkgname = cros-gcc-full
	provides = cros-gcc
`

	r := f.resolver(t, Options{})
	res, err := r.Resolve(context.Background(), []string{"cros-gcc"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	build := res.ToBuild()
	if len(build) != 1 || build[0].Name != "cros-gcc-base" {
		t.Fatalf("ToBuild = %+v, want just cros-gcc-base", build)
	}
	if want := []string{"cros-gcc-base"}; !slices.Equal(f.clone.cloned, want) {
		t.Errorf("cloned = %v, want %v", f.clone.cloned, want)
	}
}

func TestResolveExistingCloneSkipsNetwork(t *testing.T) {
	f := newFixture()
	f.clone.existing["aura"] = true
	f.manifests["aura"] = `pkgbase = aura
	pkgver = 3.2.9

pkgname = aura
`

	r := f.resolver(t, Options{})
	res, err := r.Resolve(context.Background(), []string{"aura"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if len(res.ToBuild()) != 1 {
		t.Fatalf("ToBuild = %+v, want 1 entry", res.ToBuild())
	}
	if calls := f.fetch.calls(); len(calls) != 0 {
		t.Errorf("AUR lookups = %v, want none (existing clone)", calls)
	}
	if len(f.clone.cloned) != 0 {
		t.Errorf("cloned = %v, want none", f.clone.cloned)
	}
}

func TestResolveUnknownPackage(t *testing.T) {
	f := newFixture()
	r := f.resolver(t, Options{})

	_, err := r.Resolve(context.Background(), []string{"no-such-package"})
	if err == nil {
		t.Fatal("Resolve should fail for an unknown package")
	}
	if !errors.Is(err, errors.ErrCodePackageNotFound) {
		t.Errorf("err = %v, want PACKAGE_NOT_FOUND", err)
	}
	if msg := err.Error(); !strings.Contains(msg, "no-such-package is not a known package") {
		t.Errorf("message %q should identify the package", msg)
	}
}

func TestResolveParentAttribution(t *testing.T) {
	// A missing transitive dependency names both itself and the package
	// that required it.
	f := newFixture()
	f.aurPackage("needs-ghost", `pkgbase = needs-ghost
	pkgver = 1.0
	depends = ghost

pkgname = needs-ghost
`)

	r := f.resolver(t, Options{})
	_, err := r.Resolve(context.Background(), []string{"needs-ghost"})
	if err == nil {
		t.Fatal("Resolve should fail")
	}
	if msg := err.Error(); !strings.Contains(msg, "ghost, required by needs-ghost, is not a known package") {
		t.Errorf("message %q should attribute ghost to needs-ghost", msg)
	}
}

func TestResolveAggregatesSiblingErrors(t *testing.T) {
	// Two independent failures in one batch both surface; neither branch
	// cancels the other, and the good branch leaks no partial result.
	f := setupAuraWorld()
	f.fetch.infoErr["broken"] = stderrors.New("connection reset")

	r := f.resolver(t, Options{})
	res, err := r.Resolve(context.Background(), []string{"aura", "missing-pkg", "broken"})
	if res != nil {
		t.Error("failed resolution must not return a partial result")
	}
	if err == nil {
		t.Fatal("Resolve should fail")
	}

	var list ErrorList
	if !stderrors.As(err, &list) {
		t.Fatalf("err type = %T, want ErrorList", err)
	}
	if len(list) != 2 {
		t.Fatalf("len(errors) = %d, want 2: %v", len(list), list)
	}
	if !errors.Is(err, errors.ErrCodePackageNotFound) {
		t.Errorf("collection should contain PACKAGE_NOT_FOUND: %v", err)
	}
	if !errors.Is(err, errors.ErrCodeAURFetch) {
		t.Errorf("collection should contain AUR_FETCH_FAILED: %v", err)
	}
}

func TestResolvePanicPoisonsResolution(t *testing.T) {
	f := setupAuraWorld()
	r := f.resolver(t, Options{})
	r.parse = func(path string) (*srcinfo.Srcinfo, error) {
		panic("corrupted state")
	}

	res, err := r.Resolve(context.Background(), []string{"aura"})
	if res != nil {
		t.Error("poisoned resolution must not return a result")
	}
	if !errors.Is(err, errors.ErrCodeStatePoisoned) {
		t.Errorf("err = %v, want STATE_POISONED", err)
	}
}

func TestResolveSmallPoolDeepRecursion(t *testing.T) {
	// A pool of one handle must survive recursive resolution: handles are
	// released before recursing, so depth cannot exhaust the pool.
	f := newFixture()
	f.official["a"] = alpm.OfficialRecord{Name: "a", Depends: []string{"b"}}
	f.official["b"] = alpm.OfficialRecord{Name: "b", Depends: []string{"c"}}
	f.official["c"] = alpm.OfficialRecord{Name: "c", Depends: []string{"d"}}
	f.official["d"] = alpm.OfficialRecord{Name: "d", Depends: []string{"e"}}
	f.official["e"] = alpm.OfficialRecord{Name: "e"}

	pool, err := alpm.NewPool(func() (alpm.DB, error) {
		return &fakeDB{installed: f.installed, official: f.official}, nil
	}, 1, time.Second)
	if err != nil {
		t.Fatalf("NewPool error: %v", err)
	}
	defer pool.Close()

	r := New(pool, f.fetch, f.clone, Options{})
	res, err := r.Resolve(context.Background(), []string{"a"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if got := len(res.ToInstall()); got != 5 {
		t.Errorf("len(ToInstall) = %d, want 5", got)
	}
}

func TestResolveCanonicalNameFromProvides(t *testing.T) {
	// Querying an alias resolved through the official provides relation
	// records the canonical package name.
	f := newFixture()
	f.official["libjpeg"] = alpm.OfficialRecord{Name: "libjpeg-turbo"}
	f.official["libjpeg-turbo"] = alpm.OfficialRecord{Name: "libjpeg-turbo"}

	r := f.resolver(t, Options{})
	res, err := r.Resolve(context.Background(), []string{"libjpeg"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	install := res.ToInstall()
	if len(install) != 1 || install[0].Name != "libjpeg-turbo" {
		t.Errorf("ToInstall = %+v, want libjpeg-turbo", install)
	}
}
