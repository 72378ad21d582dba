package writepolicy

import (
	"context"
	"log/slog"
	"sync"

	"github.com/krisalay/boundcache/persist"
	"github.com/krisalay/boundcache/types"
)

/*
This file implements the "write-through" policy.

Whenever the cache changes, the snapshot is saved to the gateway before
the cache call returns. The cache lock is already released at that point,
so a slow gateway never blocks readers; it only delays other callers
whose own mutations are waiting to be saved.

So the flow is: Cache write → unlock → gateway save (synchronous)
*/

// WriteThroughPolicy forwards every snapshot to the gateway immediately.
// Saves run one at a time so an older snapshot can never land on top of
// a newer one.
type WriteThroughPolicy[V any] struct {
	gateway persist.Gateway[V]
	logger  *slog.Logger

	mu sync.Mutex
	// saved is the generation of the last snapshot handed to the gateway.
	saved uint64
}

// NewWriteThroughPolicy creates a new write-through policy.
func NewWriteThroughPolicy[V any](gateway persist.Gateway[V], logger *slog.Logger) *WriteThroughPolicy[V] {
	if logger == nil {
		logger = slog.Default()
	}
	return &WriteThroughPolicy[V]{gateway: gateway, logger: logger}
}

// OnWrite saves the snapshot. A failed save is logged and dropped; the
// in-memory cache stays authoritative.
func (w *WriteThroughPolicy[V]) OnWrite(ctx context.Context, generation uint64, snapshot []types.Entry[V]) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if generation <= w.saved {
		return
	}
	w.saved = generation
	save(ctx, w.gateway, w.logger, snapshot)
}

// Close is a no-op. Write-through has no background work to clean up.
func (w *WriteThroughPolicy[V]) Close() {}

func save[V any](ctx context.Context, gateway persist.Gateway[V], logger *slog.Logger, snapshot []types.Entry[V]) {
	if err := gateway.SaveSnapshot(ctx, snapshot); err != nil {
		logger.ErrorContext(ctx, "snapshot save failed",
			"entries", len(snapshot),
			"error", err,
		)
	}
}
