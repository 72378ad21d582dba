// This file implements soonest-to-expire eviction.

package eviction

import "github.com/krisalay/boundcache/types"

// ttl evicts the entry with the earliest ExpiresAt. An entry without a
// TTL sorts as if it expired at +infinity.
type ttl[V any] struct{}

func (ttl[V]) Type() PolicyType { return TTL }

func (ttl[V]) Compare(a, b *types.Entry[V]) int {
	switch {
	case !a.HasTTL() && !b.HasTTL():
		return 0
	case !a.HasTTL():
		return 1
	case !b.HasTTL():
		return -1
	}
	return a.ExpiresAt.Compare(b.ExpiresAt)
}
