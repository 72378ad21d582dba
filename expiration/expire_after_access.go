package expiration

import (
	"time"

	"github.com/krisalay/boundcache/types"
)

/*
ExpireAfterAccess implements a very common cache behavior called "expire after access" or "sliding TTL".
Every time someone reads the data, the expiration timer is pushed forward. As long as the data keeps
getting used, it stays alive. If nobody touches it for a while, it expires.
*/
type ExpireAfterAccess[V any] struct {

	// TTL (Time-To-Live) defines how long the entry should remain valid AFTER it is accessed.
	TTL time.Duration
}

// IsExpired checks whether the entry is expired at this moment.
func (e *ExpireAfterAccess[V]) IsExpired(ent *types.Entry[V], now time.Time) bool {
	return ent.ExpiredAt(now)
}

// OnAccess pushes ExpiresAt forward by TTL. The cache has already updated
// LastAccessedAt and AccessCount. An entry stored without expiry keeps none.
func (e *ExpireAfterAccess[V]) OnAccess(ent *types.Entry[V], now time.Time) {
	if ent.HasTTL() {
		ent.ExpiresAt = now.Add(e.TTL)
	}
}

/*
OnWrite gives the entry a TTL if the caller did not. An explicit
TTL from the Set call, or the cache default, is left alone. The cache
skips OnWrite for a Set with WithTTL(0), so such entries never expire.
*/
func (e *ExpireAfterAccess[V]) OnWrite(ent *types.Entry[V], now time.Time) {
	if !ent.HasTTL() {
		ent.ExpiresAt = now.Add(e.TTL)
	}
}
