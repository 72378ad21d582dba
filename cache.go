package cache

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmgilman/go/errors"
	"golang.org/x/sync/singleflight"

	"github.com/krisalay/boundcache/api"
	"github.com/krisalay/boundcache/config"
	"github.com/krisalay/boundcache/engine"
	"github.com/krisalay/boundcache/eviction"
	"github.com/krisalay/boundcache/expiration"
	"github.com/krisalay/boundcache/persist"
	"github.com/krisalay/boundcache/stats"
	"github.com/krisalay/boundcache/store"
	"github.com/krisalay/boundcache/types"
	"github.com/krisalay/boundcache/writepolicy"
)

// CodeLoadFailed marks a GetOrLoad whose loader returned an error.
const CodeLoadFailed errors.ErrorCode = "LOAD_FAILED"

/*
Cache is the main cache implementation.
This struct is the orchestrator that connects:
- the entry table and its byte budget
- eviction
- expiration, lazy and active
- loading
- persistence
- statistics

One RWMutex guards the table, the size counter and the statistics
counters. Every mutation, including the size→evict→insert sequence of
Set, runs inside a single critical section. Snapshots for persistence
are copied inside that section and handed to the write policy only
after the lock is released.
*/
type Cache[V any] struct {
	mu sync.RWMutex

	// cfg is replaced as a whole by Reconfigure.
	cfg config.CacheConfig

	// table holds the entries and their running byte total.
	table *store.Table[V]

	// policy orders eviction victims.
	policy eviction.Policy[V]

	// engine contains the "rules" of the cache: clock, sizing, TTL, refresh, loader, write policy, metrics.
	engine *engine.CacheEngine[V]

	// stats is the engine's Metrics, kept typed for snapshots.
	stats *stats.Recorder

	// sweeper removes expired entries every CleanupInterval.
	sweeper *expiration.Sweeper

	// gateway builds the persistence gateway for a storage key.
	gateway      func(storageKey string) (persist.Gateway[V], error)
	writeThrough bool

	// generation numbers snapshots so write policies can drop stale ones.
	generation uint64

	// sf prevents multiple goroutines from loading the same key simultaneously.
	sf singleflight.Group

	// lifecycle serializes Reconfigure and Close.
	lifecycle sync.Mutex
	closed    bool
}

var _ api.Cache[string] = (*Cache[string])(nil)

/*
New builds a cache from cfg.

When persistence is enabled the stored snapshot is loaded before New
returns; a failed load is logged and leaves the cache empty. The expiration
sweeper starts if cfg.CleanupInterval is positive. Call Close when done.
*/
func New[V any](ctx context.Context, cfg config.CacheConfig, opts ...Option[V]) (*Cache[V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options[V]{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.gateway == nil {
		o.gateway = defaultGateway[V]
	}

	policy, err := eviction.NewEvictionPolicy[V](cfg.EvictionPolicy)
	if err != nil {
		return nil, err
	}

	recorder := stats.NewRecorder()
	eng := engine.NewCacheEngine(o.clock, o.sizer, o.expiration, recorder, o.logger)
	eng.Refresh = o.refresh
	eng.Loader = o.loader

	c := &Cache[V]{
		cfg:          cfg,
		table:        store.NewTable[V](),
		policy:       policy,
		engine:       eng,
		stats:        recorder,
		gateway:      o.gateway,
		writeThrough: o.writeThrough,
	}

	if cfg.PersistenceEnabled {
		gw, err := c.gateway(cfg.StorageKey)
		if err != nil {
			return nil, err
		}
		c.engine.WritePolicy = c.newWritePolicy(gw)
		c.hydrate(ctx, gw)
	}

	c.sweeper = expiration.NewSweeper(func() { c.Sweep(context.Background()) })
	c.sweeper.Start(cfg.CleanupInterval)

	return c, nil
}

// defaultGateway keeps snapshots under the user cache directory.
func defaultGateway[V any](key string) (persist.Gateway[V], error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return persist.NewDirGateway[V](filepath.Join(dir, "boundcache"), key)
}

func (c *Cache[V]) newWritePolicy(gw persist.Gateway[V]) writepolicy.WritePolicy[V] {
	if c.writeThrough {
		return writepolicy.NewWriteThroughPolicy(gw, c.engine.Logger)
	}
	return writepolicy.NewWriteBackPolicy(gw, c.engine.Logger)
}

/*
Get retrieves a value from the cache.

A missing key is a miss. An expired key is deleted on the spot and is a
miss too. A live key has its access bookkeeping updated and is a hit.
Every call feeds the average access time, recorded under the same lock
as the hit and miss counters.
*/
func (c *Cache[V]) Get(ctx context.Context, key string) (V, bool) {
	start := time.Now()

	c.mu.Lock()
	v, ok, job := c.getLocked(key)
	c.stats.Access(time.Since(start))
	c.mu.Unlock()

	job.run(ctx)
	return v, ok
}

func (c *Cache[V]) getLocked(key string) (V, bool, flush[V]) {
	var zero V

	ent, ok := c.table.Get(key)
	if !ok {
		c.engine.Metrics.Miss()
		return zero, false, flush[V]{}
	}

	if c.engine.IsExpired(ent) {
		c.expireLocked(key)
		c.engine.Metrics.Miss()
		return zero, false, c.snapshotLocked()
	}

	c.engine.OnRead(ent)
	c.engine.Metrics.Hit()
	return ent.Value, true, flush[V]{}
}

/*
Set stores value under key, replacing any previous entry for the key.

The entry expires after the WithTTL duration if given, otherwise after
the configured DefaultMaxAge. Sizing, eviction and insertion happen
under one lock; no other call can observe the evictions without the new
entry. A value larger than the whole budget evicts everything else and
is stored anyway.
*/
func (c *Cache[V]) Set(ctx context.Context, key string, value V, opts ...SetOption) {
	so := api.SetOptions{}
	for _, opt := range opts {
		opt(&so)
	}

	size := c.engine.Measure(key, value)

	c.mu.Lock()

	now := c.engine.Clock.Now()
	ent := &types.Entry[V]{
		Key:            key,
		Value:          value,
		CreatedAt:      now,
		LastAccessedAt: now,
		SizeBytes:      size,
		Metadata:       so.Metadata,
	}

	ttl := c.cfg.DefaultMaxAge
	if so.TTLSet {
		ttl = so.TTL
	}
	if ttl > 0 {
		ent.ExpiresAt = now.Add(ttl)
	}
	// An explicit WithTTL(0) opts out of expiry, including a strategy's own TTL.
	if !so.TTLSet || so.TTL > 0 {
		c.engine.OnWrite(ent)
	}

	// The previous value for this key never competes for eviction and
	// its removal is not a delete: a replacement counts as one set.
	c.table.Delete(key)

	c.ensureSpaceLocked(size)
	c.table.Put(ent)
	c.engine.Metrics.Set()

	job := c.snapshotLocked()
	c.mu.Unlock()

	job.run(ctx)
}

/*
Delete removes key and reports whether it was present.
*/
func (c *Cache[V]) Delete(ctx context.Context, key string) bool {
	c.mu.Lock()

	if _, ok := c.table.Delete(key); !ok {
		c.mu.Unlock()
		return false
	}
	c.engine.Metrics.Delete(1)

	job := c.snapshotLocked()
	c.mu.Unlock()

	job.run(ctx)
	return true
}

/*
Has reports whether key holds a live entry. Like Get, it deletes an
expired entry it runs into, but it neither touches access bookkeeping
nor counts as a hit or miss.
*/
func (c *Cache[V]) Has(key string) bool {
	c.mu.Lock()

	ent, ok := c.table.Get(key)
	if !ok {
		c.mu.Unlock()
		return false
	}

	if c.engine.IsExpired(ent) {
		c.expireLocked(key)
		job := c.snapshotLocked()
		c.mu.Unlock()
		job.run(context.Background())
		return false
	}

	c.mu.Unlock()
	return true
}

// Clear removes every entry. Each removed entry counts as a delete.
func (c *Cache[V]) Clear(ctx context.Context) {
	c.mu.Lock()

	n := c.table.Clear()
	c.engine.Metrics.Delete(n)

	job := c.snapshotLocked()
	c.mu.Unlock()

	job.run(ctx)
}

// Keys returns the stored keys, oldest insertion first. Expired entries
// not yet swept are included.
func (c *Cache[V]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table.Keys()
}

// Size returns the byte total of all stored entries.
func (c *Cache[V]) Size() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table.SizeBytes()
}

// Count returns how many entries are stored.
func (c *Cache[V]) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table.Len()
}

// Peek returns a copy of the live entry for key without touching its
// bookkeeping or any counter. An expired entry is reported as absent but
// left for Get, Has or the sweeper to remove.
func (c *Cache[V]) Peek(key string) (types.Entry[V], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ent, ok := c.table.Get(key)
	if !ok || c.engine.IsExpired(ent) {
		return types.Entry[V]{}, false
	}
	return ent.Clone(), true
}

// Statistics returns the counters together with the live table size.
func (c *Cache[V]) Statistics() stats.Statistics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats.Snapshot(c.table.SizeBytes(), int64(c.table.Len()))
}

// ResetStatistics zeroes the counters. The table is left alone.
func (c *Cache[V]) ResetStatistics() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Reset()
}

// Config returns the configuration in effect.
func (c *Cache[V]) Config() config.CacheConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

/*
Sweep removes every expired entry in one pass and returns how many were
removed. The sweeper calls it on every tick; callers may run it by hand.
When at least one entry goes, one snapshot is persisted.
*/
func (c *Cache[V]) Sweep(ctx context.Context) int {
	c.mu.Lock()

	now := c.engine.Clock.Now()
	removed := 0
	for _, ent := range c.table.Entries() {
		if c.engine.Expiration.IsExpired(ent, now) {
			c.table.Delete(ent.Key)
			c.engine.Metrics.Expire()
			removed++
		}
	}

	if removed == 0 {
		c.mu.Unlock()
		return 0
	}

	c.engine.Metrics.Delete(removed)
	job := c.snapshotLocked()
	c.mu.Unlock()

	c.engine.Logger.DebugContext(ctx, "expired entries swept", "removed", removed)
	job.run(ctx)
	return removed
}

/*
Close tears the cache down.
-------------------------
1. Stop the sweeper; no tick runs after this
2. Release every entry
3. Close the write policy, which flushes a pending snapshot best-effort

Releasing entries is not a mutation that gets persisted, so the last
stored snapshot still describes the cache as it was before Close.
Close is safe to call more than once.
*/
func (c *Cache[V]) Close() {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	c.sweeper.Stop()

	c.mu.Lock()
	wp := c.engine.WritePolicy
	c.engine.WritePolicy = nil
	c.table.Clear()
	c.mu.Unlock()

	if wp != nil {
		wp.Close()
	}
}

// expireLocked removes an expired entry and counts it as a delete.
func (c *Cache[V]) expireLocked(key string) {
	if _, ok := c.table.Delete(key); ok {
		c.engine.Metrics.Expire()
		c.engine.Metrics.Delete(1)
	}
}

/*
ensureSpaceLocked evicts entries in policy order until an entry of
required bytes fits within MaxSizeBytes. Each victim counts as one
eviction and one delete.
*/
func (c *Cache[V]) ensureSpaceLocked(required int64) {
	if c.table.SizeBytes()+required <= c.cfg.MaxSizeBytes {
		return
	}

	victims := eviction.Victims(c.policy, c.table.Entries(), c.table.SizeBytes(), required, c.cfg.MaxSizeBytes)
	for _, v := range victims {
		c.table.Delete(v.Key)
		c.engine.Metrics.Eviction()
		c.engine.Metrics.Delete(1)
	}

	if len(victims) > 0 {
		c.engine.Logger.Debug("evicted entries",
			"policy", c.policy.Type(),
			"evicted", len(victims),
			"required_bytes", required,
			"size_bytes", c.table.SizeBytes(),
		)
	}
}

// flush is a snapshot waiting to be handed to a write policy once the
// table lock is released.
type flush[V any] struct {
	wp         writepolicy.WritePolicy[V]
	generation uint64
	snapshot   []types.Entry[V]
}

func (f flush[V]) run(ctx context.Context) {
	if f.wp != nil {
		f.wp.OnWrite(ctx, f.generation, f.snapshot)
	}
}

// snapshotLocked copies the table if persistence is on and stamps the
// copy with the next generation.
func (c *Cache[V]) snapshotLocked() flush[V] {
	if c.engine.WritePolicy == nil {
		return flush[V]{}
	}
	c.generation++
	return flush[V]{
		wp:         c.engine.WritePolicy,
		generation: c.generation,
		snapshot:   c.table.Snapshot(),
	}
}
