package types

import "context"

// Loader is the contract between the cache and a slower source of truth.
type Loader[V any] interface {

	/*
		Load is called by GetOrLoad when the key is not in memory.
		1. Cache checks memory → key not found
		2. Cache calls Load(key), at most once per key at a time
		3. Loader fetches from DB/API
		4. Cache stores the result in memory with the default TTL
		5. Cache returns the value
	*/
	Load(ctx context.Context, key string) (V, error)
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc[V any] func(ctx context.Context, key string) (V, error)

func (f LoaderFunc[V]) Load(ctx context.Context, key string) (V, error) {
	return f(ctx, key)
}
