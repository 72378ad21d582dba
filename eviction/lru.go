// This file implements LRU eviction.

package eviction

import "github.com/krisalay/boundcache/types"

// lru evicts the entry whose LastAccessedAt is oldest. A freshly set
// entry counts as accessed at its insertion time.
type lru[V any] struct{}

func (lru[V]) Type() PolicyType { return LRU }

func (lru[V]) Compare(a, b *types.Entry[V]) int {
	return a.LastAccessedAt.Compare(b.LastAccessedAt)
}
