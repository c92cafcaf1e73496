// Package alpm defines the interface to the local package database and a
// bounded pool of database handles.
//
// The concrete database implementation (libalpm bindings, a pacman shell-out,
// or a test fake) is supplied by the caller; this package only fixes the
// query surface the resolver needs and the leasing discipline around it.
// Database handles are not safe for concurrent use, which is why access goes
// through [Pool].
package alpm

// OfficialRecord describes a package found in the official sync databases.
type OfficialRecord struct {
	Name    string   // Canonical package name (may differ from the queried name via provides)
	Depends []string // Direct dependency names, raw version demands included
}

// DB is one handle to the package database.
//
// Implementations need not be goroutine-safe; the [Pool] guarantees a handle
// is held by at most one goroutine at a time.
type DB interface {
	// LocalSatisfies reports whether name is installed locally, either as
	// an exact package or through a provides relationship.
	LocalSatisfies(name string) bool

	// SyncSatisfier looks name up in the sync (official repository)
	// databases, again honoring provides relationships. The returned
	// record carries the canonical name of the satisfying package.
	SyncSatisfier(name string) (OfficialRecord, bool)

	// Close releases the handle.
	Close() error
}
