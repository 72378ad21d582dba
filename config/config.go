// Package config holds the settings of one cache instance.
package config

import (
	"io"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/jmgilman/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/krisalay/boundcache/eviction"
)

// CacheConfig is the complete configuration of a cache. A running cache
// only takes a new CacheConfig as a whole, through Reconfigure.
type CacheConfig struct {
	// MaxSizeBytes is the byte budget for all entries together.
	MaxSizeBytes int64 `yaml:"max_size_bytes"`

	// DefaultMaxAge is the TTL given to entries set without one.
	// Zero means such entries never expire.
	DefaultMaxAge time.Duration `yaml:"default_max_age"`

	// CleanupInterval is the period of the active expiration sweep.
	// Zero disables the sweep; expired entries are then only removed on access.
	CleanupInterval time.Duration `yaml:"cleanup_interval"`

	// PersistenceEnabled turns on snapshot saves after mutations and the
	// snapshot load at construction.
	PersistenceEnabled bool `yaml:"persistence_enabled"`

	// StorageKey names the snapshot inside the persistence gateway.
	StorageKey string `yaml:"storage_key"`

	// EvictionPolicy picks victims when the budget is exceeded.
	EvictionPolicy eviction.PolicyType `yaml:"eviction_policy"`
}

// Default returns the configuration used when nothing is specified.
func Default() CacheConfig {
	return CacheConfig{
		MaxSizeBytes:       1 << 20,
		DefaultMaxAge:      5 * time.Minute,
		CleanupInterval:    time.Minute,
		PersistenceEnabled: false,
		StorageKey:         "boundcache.gob",
		EvictionPolicy:     eviction.LRU,
	}
}

// Validate checks the configuration and normalizes the policy name.
func (c *CacheConfig) Validate() error {
	if c.MaxSizeBytes <= 0 {
		return errors.Newf(errors.CodeInvalidConfig, "max_size_bytes must be positive, got %d", c.MaxSizeBytes)
	}
	if c.DefaultMaxAge < 0 {
		return errors.Newf(errors.CodeInvalidConfig, "default_max_age must not be negative, got %s", c.DefaultMaxAge)
	}
	if c.CleanupInterval < 0 {
		return errors.Newf(errors.CodeInvalidConfig, "cleanup_interval must not be negative, got %s", c.CleanupInterval)
	}
	if c.PersistenceEnabled && c.StorageKey == "" {
		return errors.New(errors.CodeInvalidConfig, "storage_key is required when persistence is enabled")
	}

	policy, err := eviction.ParsePolicyType(string(c.EvictionPolicy))
	if err != nil {
		return err
	}
	c.EvictionPolicy = policy

	return nil
}

// Parse decodes YAML from r on top of Default and validates the result.
func Parse(r io.Reader) (CacheConfig, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return CacheConfig{}, errors.Wrap(err, errors.CodeInvalidConfig, "decoding cache config")
	}

	if err := cfg.Validate(); err != nil {
		return CacheConfig{}, err
	}
	return cfg, nil
}

// LoadFile reads a YAML configuration file from fs.
func LoadFile(fs billy.Basic, path string) (CacheConfig, error) {
	f, err := fs.Open(path)
	if err != nil {
		return CacheConfig{}, errors.Wrapf(err, errors.CodeInvalidConfig, "opening cache config %s", path)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return CacheConfig{}, errors.WithContext(err, "path", path)
	}
	return cfg, nil
}
