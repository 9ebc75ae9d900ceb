// Package kv provides the generic persistent key-value medium backing the
// conversation store and the connected-apps registry. Three backends are
// available: an in-process map (always available, used as the degraded-mode
// fallback), a single-file SQLite database, and Postgres.
package kv

import "context"

// Store is a string-keyed persistence capability. Implementations must
// tolerate concurrent readers; writes come from one logical writer at a time.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, replacing any existing value.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}
