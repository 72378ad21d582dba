package config

import (
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krisalay/boundcache/eviction"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, eviction.LRU, cfg.EvictionPolicy)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *CacheConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*CacheConfig) {}},
		{name: "zero budget", mutate: func(c *CacheConfig) { c.MaxSizeBytes = 0 }, wantErr: true},
		{name: "negative max age", mutate: func(c *CacheConfig) { c.DefaultMaxAge = -time.Second }, wantErr: true},
		{name: "negative cleanup", mutate: func(c *CacheConfig) { c.CleanupInterval = -time.Second }, wantErr: true},
		{name: "zero cleanup disables sweep", mutate: func(c *CacheConfig) { c.CleanupInterval = 0 }},
		{
			name: "persistence without key",
			mutate: func(c *CacheConfig) {
				c.PersistenceEnabled = true
				c.StorageKey = ""
			},
			wantErr: true,
		},
		{name: "unknown policy", mutate: func(c *CacheConfig) { c.EvictionPolicy = "random" }, wantErr: true},
		{name: "policy in upper case", mutate: func(c *CacheConfig) { c.EvictionPolicy = "LFU" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse(strings.NewReader(`
max_size_bytes: 4096
default_max_age: 30s
cleanup_interval: 250ms
persistence_enabled: true
storage_key: snapshots/app.gob
eviction_policy: SIZE
`))
	require.NoError(t, err)

	assert.Equal(t, int64(4096), cfg.MaxSizeBytes)
	assert.Equal(t, 30*time.Second, cfg.DefaultMaxAge)
	assert.Equal(t, 250*time.Millisecond, cfg.CleanupInterval)
	assert.True(t, cfg.PersistenceEnabled)
	assert.Equal(t, "snapshots/app.gob", cfg.StorageKey)
	assert.Equal(t, eviction.Size, cfg.EvictionPolicy)
}

func TestParse_PartialKeepsDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader("eviction_policy: ttl\n"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.MaxSizeBytes, cfg.MaxSizeBytes)
	assert.Equal(t, def.DefaultMaxAge, cfg.DefaultMaxAge)
	assert.Equal(t, eviction.TTL, cfg.EvictionPolicy)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse(strings.NewReader("max_entries: 10\n"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
}

func TestLoadFile(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "cache.yaml", []byte("max_size_bytes: 100\neviction_policy: lfu\n"), 0o644))

	cfg, err := LoadFile(fs, "cache.yaml")
	require.NoError(t, err)
	assert.Equal(t, int64(100), cfg.MaxSizeBytes)
	assert.Equal(t, eviction.LFU, cfg.EvictionPolicy)

	_, err = LoadFile(fs, "missing.yaml")
	require.Error(t, err)

	require.NoError(t, util.WriteFile(fs, "bad.yaml", []byte("max_size_bytes: -1\n"), 0o644))
	_, err = LoadFile(fs, "bad.yaml")
	require.Error(t, err)
	pe, ok := err.(errors.PlatformError)
	require.True(t, ok)
	assert.Equal(t, "bad.yaml", pe.Context()["path"])
}
