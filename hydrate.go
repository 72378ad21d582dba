package cache

import (
	"cmp"
	"context"
	"slices"

	"github.com/krisalay/boundcache/persist"
	"github.com/krisalay/boundcache/types"
)

/*
hydrate fills the table from the stored snapshot.

Entries come back in their original insertion order with their access
bookkeeping intact. Entries that expired while the process was down are
skipped, and every entry goes through the same admission check as Set,
so a snapshot taken under a larger budget cannot overfill the cache.
A failed load is logged and the cache simply starts empty.
*/
func (c *Cache[V]) hydrate(ctx context.Context, gw persist.Gateway[V]) {
	entries, err := gw.LoadSnapshot(ctx)
	if err != nil {
		c.engine.Logger.ErrorContext(ctx, "snapshot load failed, starting empty", "error", err)
		return
	}

	slices.SortFunc(entries, func(a, b types.Entry[V]) int {
		return cmp.Compare(a.Seq, b.Seq)
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.engine.Clock.Now()
	loaded, skipped := 0, 0
	for i := range entries {
		ent := entries[i].Clone()
		if c.engine.Expiration.IsExpired(&ent, now) {
			skipped++
			continue
		}
		c.ensureSpaceLocked(ent.SizeBytes)
		c.table.Put(&ent)
		loaded++
	}

	c.engine.Logger.InfoContext(ctx, "snapshot loaded",
		"entries", loaded,
		"expired_skipped", skipped,
		"size_bytes", c.table.SizeBytes(),
	)
}
