// This file defines how cache entries expire over time.

package expiration

import (
	"time"

	"github.com/krisalay/boundcache/types"
)

/*
Strategy is the interface that all expiration rules must follow. Instead of hard-coding
expiration logic into the cache, we define a strategy so expiration behavior can be swapped easily.

The cache sets ExpiresAt from the per-call TTL or the configured default
before OnWrite runs. A strategy may adjust it further.
*/
type Strategy[V any] interface {

	// IsExpired checks if the entry is expired
	IsExpired(*types.Entry[V], time.Time) bool

	// OnAccess is called whenever a cache entry is read successfully.
	OnAccess(*types.Entry[V], time.Time)

	// OnWrite is called whenever a cache entry is written or replaced.
	OnWrite(*types.Entry[V], time.Time)
}

/*
FixedTTL is the default strategy. An entry expires at the instant fixed
when it was written, and reads never move that instant.
*/
type FixedTTL[V any] struct{}

func (FixedTTL[V]) IsExpired(ent *types.Entry[V], now time.Time) bool {
	return ent.ExpiredAt(now)
}

func (FixedTTL[V]) OnAccess(*types.Entry[V], time.Time) {}

func (FixedTTL[V]) OnWrite(*types.Entry[V], time.Time) {}
