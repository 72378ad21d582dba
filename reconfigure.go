package cache

import (
	"context"

	"github.com/jmgilman/go/errors"

	"github.com/krisalay/boundcache/config"
	"github.com/krisalay/boundcache/eviction"
	"github.com/krisalay/boundcache/writepolicy"
)

/*
Reconfigure replaces the whole configuration of a running cache.

- The eviction policy switches for every later eviction.
- A smaller MaxSizeBytes evicts right away until the table fits.
- Turning persistence on, or changing StorageKey, binds a new gateway;
  turning it off closes the old write policy after flushing it. The
  stored snapshot is not reloaded.
- A changed CleanupInterval cancels the sweeper and reschedules it.

An invalid cfg is rejected and the cache keeps its old configuration.
*/
func (c *Cache[V]) Reconfigure(ctx context.Context, cfg config.CacheConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	policy, err := eviction.NewEvictionPolicy[V](cfg.EvictionPolicy)
	if err != nil {
		return err
	}

	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	if c.closed {
		return errors.New(errors.CodeUnavailable, "cache is closed")
	}

	c.mu.RLock()
	old := c.cfg
	c.mu.RUnlock()

	persistenceChanged := cfg.PersistenceEnabled != old.PersistenceEnabled ||
		(cfg.PersistenceEnabled && cfg.StorageKey != old.StorageKey)

	var next writepolicy.WritePolicy[V]
	if persistenceChanged && cfg.PersistenceEnabled {
		gw, err := c.gateway(cfg.StorageKey)
		if err != nil {
			return err
		}
		next = c.newWritePolicy(gw)
	}

	c.mu.Lock()
	c.cfg = cfg
	c.policy = policy

	var retired writepolicy.WritePolicy[V]
	if persistenceChanged {
		retired = c.engine.WritePolicy
		c.engine.WritePolicy = next
	}

	before := c.table.Len()
	c.ensureSpaceLocked(0)

	var job flush[V]
	if c.table.Len() != before || (persistenceChanged && next != nil) {
		job = c.snapshotLocked()
	}
	c.mu.Unlock()

	if retired != nil {
		retired.Close()
	}
	job.run(ctx)

	if cfg.CleanupInterval != old.CleanupInterval {
		c.sweeper.Reset(cfg.CleanupInterval)
	}

	c.engine.Logger.InfoContext(ctx, "cache reconfigured",
		"policy", cfg.EvictionPolicy,
		"max_size_bytes", cfg.MaxSizeBytes,
		"cleanup_interval", cfg.CleanupInterval,
		"persistence_enabled", cfg.PersistenceEnabled,
	)
	return nil
}
