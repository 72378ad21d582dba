package persist

import (
	"context"
	"sync"

	"github.com/krisalay/boundcache/types"
)

// MemoryGateway keeps the latest snapshot in process memory. It is meant
// for tests and demos that want persistence behavior without a filesystem.
type MemoryGateway[V any] struct {
	mu       sync.Mutex
	snapshot []types.Entry[V]
	saves    int

	// SaveErr and LoadErr, when set, are returned instead of doing the work.
	SaveErr error
	LoadErr error
}

var _ Gateway[string] = (*MemoryGateway[string])(nil)

// NewMemoryGateway creates an empty gateway.
func NewMemoryGateway[V any]() *MemoryGateway[V] {
	return &MemoryGateway[V]{}
}

func (m *MemoryGateway[V]) SaveSnapshot(_ context.Context, entries []types.Entry[V]) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.snapshot = cloneEntries(entries)
	m.saves++
	return nil
}

func (m *MemoryGateway[V]) LoadSnapshot(context.Context) ([]types.Entry[V], error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return cloneEntries(m.snapshot), nil
}

// Saves returns how many snapshots have been stored successfully.
func (m *MemoryGateway[V]) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Snapshot returns a copy of the latest stored snapshot.
func (m *MemoryGateway[V]) Snapshot() []types.Entry[V] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneEntries(m.snapshot)
}

func cloneEntries[V any](entries []types.Entry[V]) []types.Entry[V] {
	out := make([]types.Entry[V], len(entries))
	for i := range entries {
		out[i] = entries[i].Clone()
	}
	return out
}
