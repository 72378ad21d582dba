package store

import (
	"cmp"
	"slices"

	"github.com/krisalay/boundcache/types"
)

/*
This file defines how entries are actually stored.

Table is the key → entry map plus the running byte total the cache
budgets against. The total is adjusted on every insert and removal so
SizeBytes always equals the sum of the live entries' SizeBytes.

Table does no locking. The cache owns one Table and guards every call
with its own lock.
*/
type Table[V any] struct {
	entries map[string]*types.Entry[V]

	// sizeBytes is the sum of SizeBytes over entries.
	sizeBytes int64

	// seq is the last insertion sequence handed out.
	seq uint64
}

// NewTable creates an empty table.
func NewTable[V any]() *Table[V] {
	return &Table[V]{entries: make(map[string]*types.Entry[V])}
}

// Get returns the live entry for key. The pointer is owned by the table.
func (t *Table[V]) Get(key string) (*types.Entry[V], bool) {
	ent, ok := t.entries[key]
	return ent, ok
}

// Put inserts ent, replacing any entry with the same key, and stamps it
// with the next insertion sequence.
func (t *Table[V]) Put(ent *types.Entry[V]) {
	if old, ok := t.entries[ent.Key]; ok {
		t.sizeBytes -= old.SizeBytes
	}
	t.seq++
	ent.Seq = t.seq
	t.entries[ent.Key] = ent
	t.sizeBytes += ent.SizeBytes
}

// Delete removes key and returns the removed entry.
func (t *Table[V]) Delete(key string) (*types.Entry[V], bool) {
	ent, ok := t.entries[key]
	if !ok {
		return nil, false
	}
	delete(t.entries, key)
	t.sizeBytes -= ent.SizeBytes
	return ent, true
}

// Clear removes everything and returns how many entries were removed.
func (t *Table[V]) Clear() int {
	n := len(t.entries)
	t.entries = make(map[string]*types.Entry[V])
	t.sizeBytes = 0
	return n
}

// Len returns how many entries are stored.
func (t *Table[V]) Len() int {
	return len(t.entries)
}

// SizeBytes returns the byte total of all stored entries.
func (t *Table[V]) SizeBytes() int64 {
	return t.sizeBytes
}

// Entries returns the live entries in insertion order. The pointers are
// owned by the table; the slice is the caller's.
func (t *Table[V]) Entries() []*types.Entry[V] {
	out := make([]*types.Entry[V], 0, len(t.entries))
	for _, ent := range t.entries {
		out = append(out, ent)
	}
	slices.SortFunc(out, func(a, b *types.Entry[V]) int {
		return cmp.Compare(a.Seq, b.Seq)
	})
	return out
}

// Keys returns the stored keys in insertion order.
func (t *Table[V]) Keys() []string {
	entries := t.Entries()
	keys := make([]string, len(entries))
	for i, ent := range entries {
		keys[i] = ent.Key
	}
	return keys
}

// Snapshot returns copies of every entry in insertion order, safe to hand
// to another goroutine after the lock is released.
func (t *Table[V]) Snapshot() []types.Entry[V] {
	entries := t.Entries()
	out := make([]types.Entry[V], len(entries))
	for i, ent := range entries {
		out[i] = ent.Clone()
	}
	return out
}
