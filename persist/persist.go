// Package persist defines the contract the cache uses to save and restore
// a snapshot of its entries, plus two gateways that satisfy it.
//
// The cache never waits on a gateway while it holds its table lock, and a
// failing gateway never fails a cache operation: errors are logged and the
// in-memory state stays authoritative.
package persist

import (
	"context"

	"github.com/jmgilman/go/errors"

	"github.com/krisalay/boundcache/types"
)

// CodePersistence marks a failed snapshot save or load.
const CodePersistence errors.ErrorCode = "PERSISTENCE_FAILED"

// Gateway stores and restores whole-cache snapshots.
type Gateway[V any] interface {
	// SaveSnapshot replaces the stored snapshot with entries.
	SaveSnapshot(ctx context.Context, entries []types.Entry[V]) error

	// LoadSnapshot returns the stored snapshot. It returns an empty slice
	// and a nil error when nothing has been stored yet.
	LoadSnapshot(ctx context.Context) ([]types.Entry[V], error)
}
