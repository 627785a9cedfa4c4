package cache

import (
	"context"
	"time"
)

// Store is a byte-oriented key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value stored under key. found is false when the key
	// is absent or expired.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores value under key. A non-positive ttl stores the entry
	// without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the resources held by the store.
	Close() error
}

// Purger is implemented by stores that keep expired entries until they are
// explicitly removed.
type Purger interface {
	// Purge removes expired entries and returns how many were removed.
	Purge(ctx context.Context) (int64, error)
}

// Purge removes expired entries from store if it supports purging.
func Purge(ctx context.Context, store Store) (int64, error) {
	p, ok := store.(Purger)
	if !ok {
		return 0, ErrPurgeUnsupported
	}
	return p.Purge(ctx)
}
