// Package cache provides pluggable storage backends for AUR metadata
// caching.
//
// Three backends are available:
//   - file: directory-based storage for normal CLI usage (the default)
//   - redis: Redis-backed storage for shared or long-lived environments
//   - null: no-op storage that disables caching entirely
//
// Cached values are opaque byte slices; callers are expected to namespace
// their keys (e.g. "faur:info:firefox") and choose a TTL. All backends are
// safe for concurrent use.
package cache

import (
	"context"
	"time"
)

// Cache is the storage backend interface for cached metadata.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores a value with the given time-to-live. A ttl of zero means
	// the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases any resources held by the backend.
	Close() error
}
