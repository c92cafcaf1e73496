// Package pkg provides the core libraries for aura dependency resolution.
//
// # Overview
//
// Aura resolves the transitive dependency graph of AUR packages against
// the official repositories and the local system. The pkg directory is
// organized by concern:
//
//   - [resolve] - The resolution engine: concurrent traversal,
//     classification, error accumulation, and build ordering
//   - [alpm] - Package database interface and bounded handle pool
//   - [aur] - AUR source-tree management (git clones)
//   - [srcinfo] - .SRCINFO manifest parsing
//   - [integrations] - External API clients (Faur metadata)
//   - [cache] - Metadata cache backends (file, redis, null)
//   - [render] - Graphviz output for resolved graphs
//   - [errors], [httputil], [buildinfo] - Shared plumbing
//
// # Architecture
//
// The typical data flow through a resolution:
//
//	requested names
//	       ↓
//	resolve.Resolver ── alpm.Pool ──→ local / official classification
//	       ↓
//	faur.Client + aur.Cloner ──→ .SRCINFO ──→ srcinfo.Parse
//	       ↓
//	resolve.Resolution ──→ resolve.BuildOrder ──→ tiered build plan
package pkg
