package cache_test

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	cache "github.com/krisalay/boundcache"
	"github.com/krisalay/boundcache/config"
	"github.com/krisalay/boundcache/eviction"
	"github.com/krisalay/boundcache/sizing"
)

func newBenchmarkCache(b *testing.B, policy eviction.PolicyType) *cache.Cache[int] {
	cfg := config.Default()
	cfg.MaxSizeBytes = 64 * 100000
	cfg.DefaultMaxAge = 10 * time.Second
	cfg.CleanupInterval = 0
	cfg.EvictionPolicy = policy

	c, err := cache.New(context.Background(), cfg,
		cache.WithSizer[int](sizing.Func[int](func(int) (int64, error) { return 64, nil })),
		cache.WithLogger[int](slog.New(slog.DiscardHandler)),
	)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(c.Close)
	return c
}

//
// ================= SINGLE THREAD BENCH =================
//

func BenchmarkCacheGetHit(b *testing.B) {
	ctx := context.Background()
	c := newBenchmarkCache(b, eviction.LRU)

	c.Set(ctx, "key", 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(ctx, "key")
	}
}

func BenchmarkCacheGetMiss(b *testing.B) {
	ctx := context.Background()
	c := newBenchmarkCache(b, eviction.LRU)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("miss-%d", i)
		c.Get(ctx, key)
	}
}

//
// ================= PARALLEL BENCH =================
//

func BenchmarkCacheParallelGet(b *testing.B) {
	ctx := context.Background()
	c := newBenchmarkCache(b, eviction.LRU)

	for i := 0; i < 1000; i++ {
		c.Set(ctx, fmt.Sprintf("key-%d", i), i)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			c.Get(ctx, "key-42")
		}
	})
}

//
// ================= WRITE BENCH =================
//

func BenchmarkCacheSet(b *testing.B) {
	ctx := context.Background()
	c := newBenchmarkCache(b, eviction.LRU)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(ctx, fmt.Sprintf("key-%d", i), i)
	}
}

// Every Set past the budget pays for one eviction scan.
func BenchmarkCacheSetUnderPressure(b *testing.B) {
	for _, policy := range eviction.PolicyTypes {
		b.Run(string(policy), func(b *testing.B) {
			ctx := context.Background()
			c := newBenchmarkCache(b, policy)
			for i := 0; i < 100000; i++ {
				c.Set(ctx, fmt.Sprintf("key-%d", i), i)
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				c.Set(ctx, fmt.Sprintf("new-%d", i), i)
			}
		})
	}
}

//
// ================= HIGH CONCURRENCY TEST =================
//

func BenchmarkCacheHighConcurrency(b *testing.B) {
	ctx := context.Background()
	c := newBenchmarkCache(b, eviction.LRU)

	keys := make([]string, 10000)
	for i := range keys {
		keys[i] = fmt.Sprintf("key-%d", i)
		c.Set(ctx, keys[i], i)
	}

	b.ResetTimer()

	wg := sync.WaitGroup{}
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < b.N/100; j++ {
				c.Get(ctx, keys[j%len(keys)])
			}
		}(i)
	}
	wg.Wait()
}
