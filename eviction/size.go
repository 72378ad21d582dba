// This file implements largest-first eviction.

package eviction

import (
	"cmp"

	"github.com/krisalay/boundcache/types"
)

// size evicts the entry with the largest SizeBytes first.
type size[V any] struct{}

func (size[V]) Type() PolicyType { return Size }

func (size[V]) Compare(a, b *types.Entry[V]) int {
	return cmp.Compare(b.SizeBytes, a.SizeBytes)
}
