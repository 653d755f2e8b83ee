// Package cache provides the persistent key/value layer behind the tree
// enumerator.
//
// A [Cache] stores opaque byte values under string keys. Backends that can
// enumerate their keys also implement [Scanner], which [TreeStore] uses to
// find the largest tree size already computed for a label count.
//
// Available backends:
//
//   - [FileCache]: JSON entry files under a directory (CLI default)
//   - [NewNullCache]: never stores anything (--no-cache)
//   - [MemoryCache]: process-local map, for tests
//   - [BadgerCache]: embedded badger/v4 database
//   - [RedisCache]: shared Redis instance
//   - [MongoCache]: shared MongoDB collection
package cache

import (
	"context"
	"time"
)

// NoExpiry is the TTL used for enumeration results. Trees of a given size
// never change, so they are kept until the cache is cleared.
const NoExpiry time.Duration = 0

// Cache is a byte-oriented key/value store.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value stored under key. A missing or expired entry is
	// reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means the entry does not expire.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// Scanner is implemented by caches that can list their keys.
type Scanner interface {
	// Keys returns every live key starting with prefix, in no particular
	// order.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
