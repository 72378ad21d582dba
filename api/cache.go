// Package api holds the public contract of a byte-bounded cache.
package api

import (
	"context"
	"time"

	"github.com/krisalay/boundcache/config"
	"github.com/krisalay/boundcache/stats"
	"github.com/krisalay/boundcache/types"
)

/*
Cache defines the PUBLIC API of our in-memory cache system.
This is a contract that guarantees certain behaviors, without exposing internals.
All of the details like (sizing, eviction, expiration, concurrency, data loading, and persistence)
are hidden behind this interface.
*/
type Cache[V any] interface {

	/*
		Get retrieves the value associated with the given key.

		BEHAVIOR:
		-------------------
		1. If the key exists in cache and is NOT expired:
		   - Update its access count and last access time
		   - Return the value (cache hit)

		2. If the key does NOT exist:
		   - Return the zero value and false (cache miss)

		3. If the key exists but is expired:
		   - Delete it on the spot
		   - Return the zero value and false (cache miss)
	*/
	Get(ctx context.Context, key string) (V, bool)

	/*
		GetOrLoad is Get with read-through loading.

		On a miss the configured Loader produces the value, which is
		stored with the default TTL. Concurrent misses on one key share
		a single Loader call.
	*/
	GetOrLoad(ctx context.Context, key string) (V, error)

	/*
		Set stores a key-value pair in the cache.

		BEHAVIOR:
		---------
		- Measures the value in bytes
		- Replaces any previous entry for the key
		- Evicts by the configured policy until the new entry fits
		- Applies the default max age unless a per-call TTL is given
		- Hands a snapshot to the persistence gateway (if enabled)

		IMPORTANT:
		----------
		- A value bigger than the whole budget evicts everything else and
		  is stored anyway
	*/
	Set(ctx context.Context, key string, value V, opts ...SetOption)

	/*
		Delete removes a key from the cache immediately.

		This operation is idempotent:
		- Removing a non-existing key is safe and returns false
	*/
	Delete(ctx context.Context, key string) bool

	// Has reports whether key holds a live entry, without touching
	// access bookkeeping or hit/miss counters.
	Has(key string) bool

	// Clear removes every entry.
	Clear(ctx context.Context)

	// Keys returns the stored keys, oldest insertion first.
	Keys() []string

	// Size returns the byte total of all stored entries.
	Size() int64

	// Count returns the number of stored entries.
	Count() int

	// Peek returns a copy of a live entry without touching it.
	Peek(key string) (types.Entry[V], bool)

	// Statistics returns a point-in-time view of the counters.
	Statistics() stats.Statistics

	// ResetStatistics zeroes the counters.
	ResetStatistics()

	// Config returns the configuration in effect.
	Config() config.CacheConfig

	// Reconfigure replaces the configuration of a running cache.
	Reconfigure(ctx context.Context, cfg config.CacheConfig) error

	// Sweep removes every expired entry and returns how many went.
	Sweep(ctx context.Context) int

	/*
		Close gracefully shuts down the cache.

		BEHAVIOR:
		---------
		- Stops the expiration sweeper
		- Flushes any pending write-back snapshot
		- Releases every entry

		WHEN TO CALL:
		-------------
		- Application shutdown
		- Graceful termination
		- Tests cleanup
	*/
	Close()
}

// SetOptions are the per-call settings of Set.
type SetOptions struct {
	// TTL overrides the default max age when TTLSet is true. A
	// non-positive TTL stores the entry without expiry.
	TTL    time.Duration
	TTLSet bool

	Metadata map[string]string
}

// SetOption customizes a single Set call.
type SetOption func(*SetOptions)
