package writepolicy

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krisalay/boundcache/persist"
	"github.com/krisalay/boundcache/types"
)

func snapshot(keys ...string) []types.Entry[string] {
	out := make([]types.Entry[string], 0, len(keys))
	for i, k := range keys {
		out = append(out, types.Entry[string]{Key: k, Value: k, Seq: uint64(i + 1)})
	}
	return out
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// blockingGateway holds every save until release is closed.
type blockingGateway struct {
	release chan struct{}

	mu    sync.Mutex
	saved [][]types.Entry[string]
}

func (g *blockingGateway) SaveSnapshot(_ context.Context, entries []types.Entry[string]) error {
	<-g.release
	g.mu.Lock()
	defer g.mu.Unlock()
	g.saved = append(g.saved, entries)
	return nil
}

func (g *blockingGateway) LoadSnapshot(context.Context) ([]types.Entry[string], error) {
	return nil, nil
}

func (g *blockingGateway) saves() [][]types.Entry[string] {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([][]types.Entry[string](nil), g.saved...)
}

func TestWriteThrough(t *testing.T) {
	g := persist.NewMemoryGateway[string]()
	w := NewWriteThroughPolicy[string](g, discard())
	defer w.Close()

	w.OnWrite(context.Background(), 1, snapshot("a", "b"))

	assert.Equal(t, 1, g.Saves())
	assert.Len(t, g.Snapshot(), 2)
}

func TestWriteThrough_ErrorIsAbsorbed(t *testing.T) {
	g := persist.NewMemoryGateway[string]()
	g.SaveErr = errors.New("disk full")
	w := NewWriteThroughPolicy[string](g, discard())

	assert.NotPanics(t, func() {
		w.OnWrite(context.Background(), 1, snapshot("a"))
	})
	assert.Zero(t, g.Saves())
}

func TestWriteBack_SavesAsynchronously(t *testing.T) {
	g := persist.NewMemoryGateway[string]()
	w := NewWriteBackPolicy[string](g, discard())
	defer w.Close()

	w.OnWrite(context.Background(), 1, snapshot("a"))

	require.Eventually(t, func() bool { return g.Saves() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, "a", g.Snapshot()[0].Key)
}

func TestWriteBack_NewestSnapshotWins(t *testing.T) {
	g := &blockingGateway{release: make(chan struct{})}
	w := NewWriteBackPolicy[string](g, discard())

	// The first save blocks inside the gateway; the next three pile up
	// behind it and must collapse into the newest one.
	w.OnWrite(context.Background(), 1, snapshot("1"))
	time.Sleep(20 * time.Millisecond)
	w.OnWrite(context.Background(), 2, snapshot("1", "2"))
	w.OnWrite(context.Background(), 3, snapshot("1", "2", "3"))
	w.OnWrite(context.Background(), 4, snapshot("1", "2", "3", "4"))

	close(g.release)
	w.Close()

	saves := g.saves()
	require.Len(t, saves, 2)
	assert.Len(t, saves[0], 1)
	assert.Len(t, saves[1], 4)
}

func TestWriteBack_CloseFlushesPending(t *testing.T) {
	g := persist.NewMemoryGateway[string]()
	w := NewWriteBackPolicy[string](g, discard())

	ctx, cancel := context.WithCancel(context.Background())
	w.OnWrite(ctx, 1, snapshot("a", "b", "c"))
	cancel()
	w.Close()

	assert.Equal(t, 1, g.Saves())
	assert.Len(t, g.Snapshot(), 3)

	// Writes after Close are ignored and a second Close is harmless.
	w.OnWrite(context.Background(), 2, snapshot("late"))
	w.Close()
	assert.Equal(t, 1, g.Saves())
}

func TestWriteThrough_DropsStaleGeneration(t *testing.T) {
	g := persist.NewMemoryGateway[string]()
	w := NewWriteThroughPolicy[string](g, discard())

	w.OnWrite(context.Background(), 2, snapshot("a", "b"))
	w.OnWrite(context.Background(), 1, snapshot("a"))

	assert.Equal(t, 1, g.Saves())
	assert.Len(t, g.Snapshot(), 2)
}

func TestWriteThrough_SerializesSaves(t *testing.T) {
	g := &blockingGateway{release: make(chan struct{})}
	w := NewWriteThroughPolicy[string](g, discard())

	older := make(chan struct{})
	go func() {
		defer close(older)
		w.OnWrite(context.Background(), 1, snapshot("a"))
	}()
	time.Sleep(20 * time.Millisecond)

	newer := make(chan struct{})
	go func() {
		defer close(newer)
		w.OnWrite(context.Background(), 2, snapshot("a", "b"))
	}()
	time.Sleep(20 * time.Millisecond)

	close(g.release)
	<-older
	<-newer

	saves := g.saves()
	require.NotEmpty(t, saves)
	assert.Len(t, saves[len(saves)-1], 2)
}

func TestWriteBack_DropsStaleGeneration(t *testing.T) {
	g := persist.NewMemoryGateway[string]()
	w := NewWriteBackPolicy[string](g, discard())

	w.OnWrite(context.Background(), 5, snapshot("a", "b", "c"))
	w.OnWrite(context.Background(), 3, snapshot("a"))
	w.Close()

	assert.Len(t, g.Snapshot(), 3)
}
