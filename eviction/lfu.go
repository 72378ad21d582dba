// This file implements LFU eviction.

package eviction

import (
	"cmp"

	"github.com/krisalay/boundcache/types"
)

// lfu evicts the entry with the lowest AccessCount. A replaced entry
// starts over at zero.
type lfu[V any] struct{}

func (lfu[V]) Type() PolicyType { return LFU }

func (lfu[V]) Compare(a, b *types.Entry[V]) int {
	return cmp.Compare(a.AccessCount, b.AccessCount)
}
