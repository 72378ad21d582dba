package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	cache "github.com/krisalay/boundcache"
	"github.com/krisalay/boundcache/config"
	"github.com/krisalay/boundcache/eviction"
	"github.com/krisalay/boundcache/stats"
	"github.com/krisalay/boundcache/types"
)

// ================= BACKING STORE =================
type InMemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{data: make(map[string]string)}
}

func (s *InMemoryStore) Load(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fmt.Println("STORE  → load:", key)
	v, ok := s.data[key]
	if !ok {
		return "", fmt.Errorf("no value for %q", key)
	}
	return v, nil
}

func (s *InMemoryStore) Put(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

type flags struct {
	configPath string
	policy     string
	maxSize    int64
	persistDir string
	verbose    bool
}

// ================= MAIN =================

func main() {
	f := flags{}

	cmd := &cobra.Command{
		Use:   "boundcache-demo",
		Short: "Walk through the behavior of a byte-bounded cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), f)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&f.configPath, "config", "", "YAML cache configuration file")
	cmd.Flags().StringVar(&f.policy, "policy", "", "eviction policy: lru, lfu, ttl, size, fifo")
	cmd.Flags().Int64Var(&f.maxSize, "max-size", 0, "byte budget, overrides the config file")
	cmd.Flags().StringVar(&f.persistDir, "persist-dir", "", "enable persistence and keep snapshots in this directory")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "log at debug level")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func loadConfig(f flags) (config.CacheConfig, error) {
	cfg := config.Default()
	cfg.MaxSizeBytes = 200
	cfg.DefaultMaxAge = 10 * time.Second
	cfg.CleanupInterval = 500 * time.Millisecond

	if f.configPath != "" {
		fs := osfs.New(filepath.Dir(f.configPath))
		loaded, err := config.LoadFile(fs, filepath.Base(f.configPath))
		if err != nil {
			return config.CacheConfig{}, err
		}
		cfg = loaded
	}

	if f.policy != "" {
		cfg.EvictionPolicy = eviction.PolicyType(f.policy)
	}
	if f.maxSize > 0 {
		cfg.MaxSizeBytes = f.maxSize
	}
	if f.persistDir != "" {
		cfg.PersistenceEnabled = true
	}

	return cfg, cfg.Validate()
}

func run(ctx context.Context, f flags) error {
	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}

	fmt.Println("\n==================== SYSTEM BOOT ====================")
	fmt.Println("EVICTION POLICY :", strings.ToUpper(string(cfg.EvictionPolicy)))
	fmt.Println("CAPACITY        :", cfg.MaxSizeBytes, "bytes")
	fmt.Println("DEFAULT MAX AGE :", cfg.DefaultMaxAge)
	fmt.Println("CLEANUP         :", cfg.CleanupInterval)
	fmt.Println("PERSISTENCE     :", cfg.PersistenceEnabled)

	// ---------------- Backing Store ----------------
	store := NewInMemoryStore()
	store.Put("a", "alpha")
	store.Put("b", "beta")

	opts := []cache.Option[string]{
		cache.WithLogger[string](logger),
		cache.WithLoader[string](types.LoaderFunc[string](store.Load)),
	}
	if f.persistDir != "" {
		opts = append(opts, cache.WithSnapshotFS[string](osfs.New(f.persistDir)))
	}

	c, err := cache.New(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	fmt.Println("RESTORED        :", c.Count(), "entries")

	// ====================================================
	fmt.Println("\n==================== 1) CACHE MISS ====================")
	v, err := c.GetOrLoad(ctx, "a")
	fmt.Println("CACHE  → GET a =", v, err)

	// ====================================================
	fmt.Println("\n==================== 2) CACHE HIT ====================")
	v, err = c.GetOrLoad(ctx, "a")
	fmt.Println("CACHE  → GET a =", v, err)

	// ====================================================
	fmt.Println("\n==================== 3) TTL EXPIRATION ====================")
	c.Set(ctx, "x", "temp-value", cache.WithTTL(300*time.Millisecond))
	fmt.Println("CACHE  → SET x (TTL = 300ms)")

	time.Sleep(2 * cfg.CleanupInterval)

	fmt.Println("CACHE  → HAS x after TTL =", c.Has("x"))

	// ====================================================
	fmt.Println("\n==================== 4) SINGLEFLIGHT ====================")

	wg := sync.WaitGroup{}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			val, _ := c.GetOrLoad(ctx, "b")
			fmt.Printf("GOROUTINE-%d → GET b = %v\n", id, val)
		}(i)
	}
	wg.Wait()

	// ====================================================
	fmt.Println("\n==================== 5) EVICTION ====================")

	for i := 0; i < 50; i++ {
		c.Set(ctx, fmt.Sprintf("k%d", i), fmt.Sprintf("value-%02d", i))
	}
	fmt.Println("CACHE  → SIZE =", c.Size(), "bytes,", c.Count(), "entries")
	fmt.Println("CACHE  → KEYS =", c.Keys())

	_, ok := c.Get(ctx, "a")
	fmt.Println("CACHE  → a still cached =", ok)

	// ====================================================
	fmt.Println("\n==================== 6) REMOVE ====================")

	fmt.Println("CACHE  → DELETE k49 =", c.Delete(ctx, "k49"))
	_, ok = c.Get(ctx, "k49")
	fmt.Println("CACHE  → k49 cached after delete =", ok)

	// ====================================================
	printStatistics(c.Statistics())

	// ====================================================
	fmt.Println("\n==================== SHUTDOWN ====================")
	c.Close()
	fmt.Println("SYSTEM → cache closed cleanly")
	return nil
}

func printStatistics(s stats.Statistics) {
	fmt.Println("\n==================== STATISTICS ====================")
	fmt.Printf("HITS      : %d\n", s.Hits)
	fmt.Printf("MISSES    : %d\n", s.Misses)
	fmt.Printf("SETS      : %d\n", s.Sets)
	fmt.Printf("DELETES   : %d\n", s.Deletes)
	fmt.Printf("EVICTIONS : %d\n", s.Evictions)
	fmt.Printf("ENTRIES   : %d\n", s.CurrentEntries)
	fmt.Printf("SIZE      : %d bytes\n", s.CurrentSizeBytes)
	fmt.Printf("HIT RATE  : %.2f\n", s.HitRate)
	fmt.Printf("AVG GET   : %.4f ms\n", s.AverageAccessTimeMs)
}
