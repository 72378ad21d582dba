// This file implements FIFO eviction.

package eviction

import "github.com/krisalay/boundcache/types"

// fifo ignores reads completely. Every pair compares equal, so Order
// falls back to insertion sequence and the oldest insert goes first.
type fifo[V any] struct{}

func (fifo[V]) Type() PolicyType { return FIFO }

func (fifo[V]) Compare(*types.Entry[V], *types.Entry[V]) int { return 0 }
