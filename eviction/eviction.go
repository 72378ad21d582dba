package eviction

import (
	"cmp"
	"slices"
	"strings"

	"github.com/jmgilman/go/errors"
	"github.com/krisalay/boundcache/types"
)

/*
This file defines how the cache decides what to remove when a new value
would push it over its byte budget.
*/

/*
Policy is the interface that all eviction strategies must follow.

A policy does not keep its own bookkeeping. Every entry already carries
LastAccessedAt, AccessCount, ExpiresAt, SizeBytes and Seq, so a policy is
just an ordering over entries. The cache hands over the live entries and
evicts from the front of the ordering.
*/
type Policy[V any] interface {

	// Type identifies the policy.
	Type() PolicyType

	// Compare orders two entries. A negative result means a is evicted
	// before b. Returning 0 defers to insertion order.
	Compare(a, b *types.Entry[V]) int
}

// PolicyType is a simple identifier for supported eviction strategies.
type PolicyType string

const (
	// LRU (Least Recently Used): evicts the entry read longest ago.
	LRU PolicyType = "lru"

	// LFU (Least Frequently Used): evicts the entry read the fewest times.
	LFU PolicyType = "lfu"

	// TTL: evicts the entry closest to expiring. Entries without a TTL go last.
	TTL PolicyType = "ttl"

	// Size: evicts the largest entry first, freeing the most bytes per eviction.
	Size PolicyType = "size"

	// FIFO (First In First Out): evicts the oldest inserted entry, regardless of access.
	FIFO PolicyType = "fifo"
)

// PolicyTypes lists every supported policy.
var PolicyTypes = []PolicyType{LRU, LFU, TTL, Size, FIFO}

// ParsePolicyType accepts a policy name in any letter case.
func ParsePolicyType(s string) (PolicyType, error) {
	t := PolicyType(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(PolicyTypes, t) {
		return "", errors.Newf(errors.CodeInvalidConfig, "unknown eviction policy %q", s)
	}
	return t, nil
}

// NewEvictionPolicy is a small factory function.
// Given a PolicyType, it creates the correct eviction policy.
func NewEvictionPolicy[V any](t PolicyType) (Policy[V], error) {
	switch t {
	case LRU:
		return lru[V]{}, nil
	case LFU:
		return lfu[V]{}, nil
	case TTL:
		return ttl[V]{}, nil
	case Size:
		return size[V]{}, nil
	case FIFO:
		return fifo[V]{}, nil
	default:
		return nil, errors.Newf(errors.CodeInvalidConfig, "unknown eviction policy %q", t)
	}
}

// Order sorts entries into eviction order in place.
// Entries the policy considers equal keep ascending Seq order, so the
// result never depends on how the caller collected them.
func Order[V any](p Policy[V], entries []*types.Entry[V]) {
	slices.SortFunc(entries, func(a, b *types.Entry[V]) int {
		if c := p.Compare(a, b); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
}

/*
Victims picks the entries to evict so that a new entry of required bytes
can be admitted into a table holding current bytes under budget.

  - If the new entry already fits, nothing is evicted.
  - Otherwise entries are taken in policy order until the bytes freed
    reach required and the new entry fits.
  - If even an empty table cannot hold the new entry, every entry is
    returned. The caller still inserts it and the table ends up over
    budget by that single entry.

entries is reordered in place.
*/
func Victims[V any](p Policy[V], entries []*types.Entry[V], current, required, budget int64) []*types.Entry[V] {
	if current+required <= budget {
		return nil
	}

	Order(p, entries)

	var freed int64
	for i, e := range entries {
		if freed >= required && current-freed+required <= budget {
			return entries[:i]
		}
		freed += e.SizeBytes
	}
	return entries
}
