package resolve

import (
	"slices"
	"strings"
	"sync"
)

// Official represents a package installable from the official repositories.
type Official struct {
	Name string // Canonical repository name
}

// Buildable represents a package that must be built from an AUR source
// tree. Identity is the base name only; two Buildables with the same name
// are the same package regardless of dependency differences.
type Buildable struct {
	Name string   // The manifest's base name (may differ from the requested alias)
	Deps []string // Normalized dependency names, sorted and deduplicated
}

// Resolution accumulates the outcome of one resolve call. It is mutated
// concurrently during traversal (all methods are safe for concurrent use)
// and read-only once Resolve returns it.
type Resolution struct {
	mu        sync.Mutex
	toInstall map[string]Official
	toBuild   map[string]Buildable
	satisfied map[string]bool

	// provided holds alternate names under which an already-accounted-for
	// package can be referred to (split packages and provides entries).
	// Used only to stop redundant re-resolution, never surfaced.
	provided map[string]bool
}

func newResolution() *Resolution {
	return &Resolution{
		toInstall: make(map[string]Official),
		toBuild:   make(map[string]Buildable),
		satisfied: make(map[string]bool),
		provided:  make(map[string]bool),
	}
}

// seen reports whether the name is already accounted for in any of the
// four sets.
func (r *Resolution) seen(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.provided[name] || r.satisfied[name] || r.hasOfficial(name) || r.hasBuildable(name)
}

// hasOfficial and hasBuildable require r.mu to be held.
func (r *Resolution) hasOfficial(name string) bool {
	_, ok := r.toInstall[name]
	return ok
}

func (r *Resolution) hasBuildable(name string) bool {
	_, ok := r.toBuild[name]
	return ok
}

func (r *Resolution) addSatisfied(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.satisfied[name] = true
}

func (r *Resolution) addOfficial(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toInstall[name] = Official{Name: name}
}

// addBuildable records a buildable package together with all names its
// build output provides. The two go in under one lock acquisition so a
// concurrent seen() check can never observe the buildable without its
// aliases.
func (r *Resolution) addBuildable(b Buildable, aliases []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toBuild[b.Name] = b
	for _, a := range aliases {
		r.provided[a] = true
	}
}

// ToInstall returns the official packages to install, sorted by name.
func (r *Resolution) ToInstall() []Official {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Official, 0, len(r.toInstall))
	for _, o := range r.toInstall {
		out = append(out, o)
	}
	slices.SortFunc(out, func(a, b Official) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// ToBuild returns the packages to build from source, sorted by name.
func (r *Resolution) ToBuild() []Buildable {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Buildable, 0, len(r.toBuild))
	for _, b := range r.toBuild {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b Buildable) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Satisfied returns the names that were already present on the system,
// sorted.
func (r *Resolution) Satisfied() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.satisfied))
	for n := range r.satisfied {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}
