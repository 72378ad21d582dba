package writepolicy

import (
	"context"
	"log/slog"
	"sync"

	"github.com/krisalay/boundcache/persist"
	"github.com/krisalay/boundcache/types"
)

// This file implements the "write-back" policy.

// pending is the newest snapshot not yet handed to the gateway.
type pending[V any] struct {
	ctx        context.Context
	generation uint64
	snapshot   []types.Entry[V]
}

/*
WriteBackPolicy saves snapshots on a background worker so a cache
mutation never waits for I/O.

Every snapshot is a full copy of the cache, so only the newest one
matters. Instead of queueing each snapshot, the policy keeps a single
pending slot: a newer snapshot replaces one the worker has not picked
up yet. Bursts of writes collapse into one save. A snapshot that is
older than the newest one accepted is dropped, whichever order the
callers arrive in.
*/
type WriteBackPolicy[V any] struct {
	gateway persist.Gateway[V]
	logger  *slog.Logger

	mu     sync.Mutex
	next   *pending[V]
	closed bool

	// accepted is the newest generation put into the pending slot.
	accepted uint64

	// wake has room for one signal; the worker drains the slot on each.
	wake chan struct{}
	stop chan struct{}

	// wg is used to wait for the worker to finish during shutdown.
	wg sync.WaitGroup
}

// NewWriteBackPolicy creates a new write-back policy and starts its worker.
func NewWriteBackPolicy[V any](gateway persist.Gateway[V], logger *slog.Logger) *WriteBackPolicy[V] {
	if logger == nil {
		logger = slog.Default()
	}

	w := &WriteBackPolicy[V]{
		gateway: gateway,
		logger:  logger,
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}

	// Start one background worker
	w.wg.Add(1)
	go w.worker()

	return w
}

// OnWrite stores the snapshot in the pending slot and wakes the worker.
// The caller's cancellation does not reach the background save.
func (w *WriteBackPolicy[V]) OnWrite(ctx context.Context, generation uint64, snapshot []types.Entry[V]) {
	w.mu.Lock()
	if w.closed || generation <= w.accepted {
		w.mu.Unlock()
		return
	}
	w.accepted = generation
	w.next = &pending[V]{ctx: context.WithoutCancel(ctx), generation: generation, snapshot: snapshot}
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
		// worker already has a wake-up queued
	}
}

/*
worker runs in the background and saves the pending snapshot each time
it is woken. This is where eventual consistency happens.
*/
func (w *WriteBackPolicy[V]) worker() {
	defer w.wg.Done()

	for {
		select {
		case <-w.wake:
			w.flush()
		case <-w.stop:
			w.flush()
			return
		}
	}
}

func (w *WriteBackPolicy[V]) flush() {
	w.mu.Lock()
	p := w.next
	w.next = nil
	w.mu.Unlock()

	if p == nil {
		return
	}
	save(p.ctx, w.gateway, w.logger, p.snapshot)
}

/*
Close shuts down the write-back policy.
------------------
1. Stop accepting snapshots
2. Let the worker save whatever is still pending
3. Wait for it to exit

Close is safe to call more than once.
*/
func (w *WriteBackPolicy[V]) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()

	close(w.stop)
	w.wg.Wait()
}
