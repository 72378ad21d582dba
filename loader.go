package cache

import (
	"context"

	"github.com/jmgilman/go/errors"
)

/*
GetOrLoad is Get with read-through loading.

On a miss the configured Loader fetches the value, the cache stores it
with the default TTL, and the value is returned.

singleflight ensures that:
- If 100 goroutines request the same missing key,
  only ONE of them calls the Loader.
- Others wait for the result.

Without a Loader a miss returns a NOT_FOUND error. A Loader failure is
returned wrapped with CodeLoadFailed and nothing is stored.
*/
func (c *Cache[V]) GetOrLoad(ctx context.Context, key string) (V, error) {
	if v, ok := c.Get(ctx, key); ok {
		return v, nil
	}

	var zero V
	if c.engine.Loader == nil {
		return zero, errors.WithContext(
			errors.New(errors.CodeNotFound, "key not cached and no loader configured"),
			"key", key,
		)
	}

	res, err, _ := c.sf.Do(key, func() (any, error) {
		v, err := c.engine.Load(ctx, key)
		if err != nil {
			return nil, err
		}
		c.Set(ctx, key, v)
		return v, nil
	})
	if err != nil {
		return zero, errors.WithContext(errors.Wrap(err, CodeLoadFailed, "loader failed"), "key", key)
	}

	v, _ := res.(V)
	return v, nil
}
