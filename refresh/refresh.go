// This file defines the idea of a "refresh hook".
// This hook allows the cache to do something extra WHEN data is read from the cache.
// The goal of refresh is: "Keep data fresh without slowing down reads"

package refresh

import "github.com/krisalay/boundcache/types"

/*
Hook is the interface for refresh behavior.
If a refresh hook is configured, it will be called every time Get returns a live entry.

This gives us a chance to:
- Check if the entry is about to expire
- Trigger a background reload
- Log access patterns

The cache itself does NOT care what the hook does.
It just calls OnRead and moves on.
*/
type Hook[V any] interface {

	/*
		OnRead is called after a successful cache read, while the cache
		still holds its lock. The entry must be treated as read-only and
		must not be retained. Any real work belongs on another goroutine;
		calling back into the cache from OnRead deadlocks.
	*/
	OnRead(key string, ent *types.Entry[V])
}

// HookFunc adapts a plain function to the Hook interface.
type HookFunc[V any] func(key string, ent *types.Entry[V])

func (f HookFunc[V]) OnRead(key string, ent *types.Entry[V]) {
	f(key, ent)
}
