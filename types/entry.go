package types

import (
	"maps"
	"time"
)

/*
Entry is one cached item together with the bookkeeping the cache needs
to expire it, size it and pick it as an eviction victim.

Value is immutable once inserted. Get only touches AccessCount and
LastAccessedAt; a Set on the same key builds a brand new Entry.

All fields are exported so a snapshot of entries can be gob-encoded by
a persistence gateway.
*/
type Entry[V any] struct {
	Key            string
	Value          V
	CreatedAt      time.Time
	ExpiresAt      time.Time // zero => no TTL
	AccessCount    int64
	LastAccessedAt time.Time

	// SizeBytes is computed once at insertion and never recomputed.
	SizeBytes int64

	// Metadata is carried along with the entry but never interpreted.
	Metadata map[string]string

	// Seq is the insertion sequence number. Earlier inserts have lower values.
	// It is the tie-break for every eviction order.
	Seq uint64
}

// HasTTL reports whether the entry carries an expiry time.
func (e *Entry[V]) HasTTL() bool {
	return !e.ExpiresAt.IsZero()
}

// ExpiredAt reports whether the entry is expired at the given instant.
func (e *Entry[V]) ExpiredAt(now time.Time) bool {
	return e.HasTTL() && now.After(e.ExpiresAt)
}

// Touch records one successful read.
func (e *Entry[V]) Touch(now time.Time) {
	e.AccessCount++
	e.LastAccessedAt = now
}

// Clone copies the entry. Metadata is copied; Value is copied by assignment.
func (e *Entry[V]) Clone() Entry[V] {
	c := *e
	if e.Metadata != nil {
		c.Metadata = maps.Clone(e.Metadata)
	}
	return c
}
