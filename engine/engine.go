package engine

import (
	"context"
	"log/slog"

	"github.com/krisalay/boundcache/expiration"
	"github.com/krisalay/boundcache/refresh"
	"github.com/krisalay/boundcache/sizing"
	"github.com/krisalay/boundcache/types"
	"github.com/krisalay/boundcache/writepolicy"
)

/*
CacheEngine is the "brain" of the cache system.
It is responsible for the "behavior" of the cache, NOT storage.
This acts as the policy layer.

It decides:
- What time it is
- How many bytes a value costs
- When data is expired
- How TTL is updated on reads/writes
- When refresh hooks are triggered
- How data is loaded on cache miss
- How snapshots are propagated to persistence
- How metrics are recorded

It does NOT:
- Store data
- Handle locking
- Decide eviction order
*/
type CacheEngine[V any] struct {

	// Clock stamps CreatedAt, LastAccessedAt and ExpiresAt.
	Clock types.Clock

	// Sizer computes the byte cost charged against the budget.
	Sizer sizing.Sizer[V]

	// Expiration controls when a cache entry should be considered “too old”.
	Expiration expiration.Strategy[V]

	// Refresh is an optional hook that runs when data is read.
	// If nil, no refresh logic is executed.
	Refresh refresh.Hook[V]

	// Loader is how GetOrLoad talks to the outside world when it does NOT have the data.
	// If nil, GetOrLoad reports a miss as NOT_FOUND.
	Loader types.Loader[V]

	// WritePolicy receives a snapshot after each persisted mutation.
	// If nil, persistence is disabled and cache writes stay only in memory.
	WritePolicy writepolicy.WritePolicy[V]

	// Metrics is how we keep track of what the cache is doing.
	Metrics types.Metrics

	// Logger receives warnings about absorbed failures.
	Logger *slog.Logger
}

/*
NewCacheEngine creates a CacheEngine with every collaborator set.
Missing pieces get defaults so the rest of the code never nil-checks them:
the system clock, the gob sizer, fixed TTL expiration, no-op metrics and
the default slog logger. Refresh, Loader and WritePolicy stay optional.
*/
func NewCacheEngine[V any](
	clock types.Clock,
	sizer sizing.Sizer[V],
	exp expiration.Strategy[V],
	metrics types.Metrics,
	logger *slog.Logger,
) *CacheEngine[V] {
	if clock == nil {
		clock = types.SystemClock{}
	}
	if sizer == nil {
		sizer = sizing.GobSizer[V]{}
	}
	if exp == nil {
		exp = expiration.FixedTTL[V]{}
	}
	if metrics == nil {
		metrics = types.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CacheEngine[V]{
		Clock:      clock,
		Sizer:      sizer,
		Expiration: exp,
		Metrics:    metrics,
		Logger:     logger,
	}
}

/*
Measure returns the byte cost of a value.

A value the Sizer cannot measure is charged sizing.FallbackSize and a
warning is logged. Set never fails because of sizing.
*/
func (e *CacheEngine[V]) Measure(key string, value V) int64 {
	n, err := e.Sizer.Size(value)
	if err != nil {
		e.Logger.Warn("size computation failed, charging fallback size",
			"key", key,
			"fallback_bytes", sizing.FallbackSize,
			"error", err,
		)
		return sizing.FallbackSize
	}
	if n < 0 {
		return 0
	}
	return n
}

/*
IsExpired checks whether a cache entry is expired right now,
as judged by the configured Expiration strategy.
*/
func (e *CacheEngine[V]) IsExpired(ent *types.Entry[V]) bool {
	return e.Expiration.IsExpired(ent, e.Clock.Now())
}

/*
OnRead is called every time Get finds a live entry.

- Bump AccessCount and LastAccessedAt
- Let sliding expiration strategies push ExpiresAt forward
- Run the refresh hook
*/
func (e *CacheEngine[V]) OnRead(ent *types.Entry[V]) {
	now := e.Clock.Now()

	ent.Touch(now)
	e.Expiration.OnAccess(ent, now)

	// Refresh is optional and best-effort.
	// It should never slow down the read path.
	if e.Refresh != nil {
		e.Refresh.OnRead(ent.Key, ent)
	}
}

/*
OnWrite is called for every freshly built entry before it is stored.
The entry already carries timestamps and its explicit or default TTL.
*/
func (e *CacheEngine[V]) OnWrite(ent *types.Entry[V]) {
	e.Expiration.OnWrite(ent, ent.CreatedAt)
}

/*
Load is used by GetOrLoad when the cache does NOT have the data.

This usually means:
- A database call
- A network request
*/
func (e *CacheEngine[V]) Load(ctx context.Context, key string) (V, error) {
	return e.Loader.Load(ctx, key)
}
