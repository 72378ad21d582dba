package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	cache "github.com/krisalay/boundcache"
	"github.com/krisalay/boundcache/config"
	"github.com/krisalay/boundcache/eviction"
	"github.com/krisalay/boundcache/sizing"
)

type benchConfig struct {
	policy      string
	capacity    int64
	preloadKeys int
	goroutines  int
	opsPerG     int
}

// ================= BENCHMARK =================

func main() {
	bc := benchConfig{}

	cmd := &cobra.Command{
		Use:   "boundcache-bench",
		Short: "Concurrent load test against a single cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), bc)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&bc.policy, "policy", string(eviction.LRU), "eviction policy")
	cmd.Flags().Int64Var(&bc.capacity, "capacity", 8<<20, "byte budget")
	cmd.Flags().IntVar(&bc.preloadKeys, "preload", 100000, "keys written before the load test")
	cmd.Flags().IntVar(&bc.goroutines, "goroutines", 200, "concurrent readers")
	cmd.Flags().IntVar(&bc.opsPerG, "ops", 5000, "reads per goroutine")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, bc benchConfig) error {
	cfg := config.Default()
	cfg.MaxSizeBytes = bc.capacity
	cfg.DefaultMaxAge = time.Minute
	cfg.EvictionPolicy = eviction.PolicyType(bc.policy)

	// Fixed 64-byte values keep the gob encoder out of the measurement.
	c, err := cache.New(ctx, cfg,
		cache.WithSizer[int](sizing.Func[int](func(int) (int64, error) { return 64, nil })),
		cache.WithLogger[int](slog.New(slog.DiscardHandler)),
	)
	if err != nil {
		return err
	}
	defer c.Close()

	fmt.Println("\n================ CACHE LOAD BENCHMARK =================")

	fmt.Println("CONFIG")
	fmt.Println("---------------------------------")
	fmt.Println("Policy       :", cfg.EvictionPolicy)
	fmt.Println("Capacity     :", cfg.MaxSizeBytes, "bytes")
	fmt.Println("Preload Keys :", bc.preloadKeys)
	fmt.Println("Goroutines   :", bc.goroutines)
	fmt.Println("Ops/Goroutine:", bc.opsPerG)
	fmt.Println("---------------------------------")

	// ---------------- Preload Cache ----------------
	fmt.Println("\nPreloading cache...")
	for i := 0; i < bc.preloadKeys; i++ {
		c.Set(ctx, fmt.Sprintf("key-%d", i), i)
	}
	fmt.Println("Preload complete.")

	// ---------------- Warmup ----------------
	fmt.Println("\nWarming up cache...")
	for i := 0; i < 10000; i++ {
		c.Get(ctx, fmt.Sprintf("key-%d", i%bc.preloadKeys))
	}
	fmt.Println("Warmup complete.")
	c.ResetStatistics()

	// ---------------- Load Test ----------------
	fmt.Println("\nRunning concurrency benchmark...")

	start := time.Now()

	wg := sync.WaitGroup{}
	wg.Add(bc.goroutines)

	for i := 0; i < bc.goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < bc.opsPerG; j++ {
				key := fmt.Sprintf("key-%d", j%bc.preloadKeys)
				if j%10 == 0 {
					c.Set(ctx, key, j)
					continue
				}
				c.Get(ctx, key)
			}
		}(i)
	}

	wg.Wait()

	duration := time.Since(start)
	totalOps := bc.goroutines * bc.opsPerG
	s := c.Statistics()

	fmt.Println("\n================ RESULTS =================")
	fmt.Printf("Total Operations : %d\n", totalOps)
	fmt.Printf("Total Time       : %v\n", duration)
	fmt.Printf("Throughput       : %.2f ops/sec\n", float64(totalOps)/duration.Seconds())
	fmt.Printf("Hit Rate         : %.2f\n", s.HitRate)
	fmt.Printf("Evictions        : %d\n", s.Evictions)
	fmt.Printf("Avg Get          : %.4f ms\n", s.AverageAccessTimeMs)
	fmt.Println("=========================================")

	return nil
}
