// Package cache stores computed layouts and rendered artifacts.
//
// Three backends implement [Cache]:
//   - [FileCache] for CLI use, one JSON file per entry under a directory
//   - [RedisCache] for the HTTP server, shared between replicas
//   - [NullCache] when caching is disabled
//
// Keys are built by a [Keyer] from a content hash of the input and the
// options that affect the output, so any change to either is a miss.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	// Clear removes all entries and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}
