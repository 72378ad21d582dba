package cache

import (
	"log/slog"
	"maps"
	"time"

	"github.com/go-git/go-billy/v5"

	"github.com/krisalay/boundcache/api"
	"github.com/krisalay/boundcache/expiration"
	"github.com/krisalay/boundcache/persist"
	"github.com/krisalay/boundcache/refresh"
	"github.com/krisalay/boundcache/sizing"
	"github.com/krisalay/boundcache/types"
)

// options collects everything New accepts besides the CacheConfig.
type options[V any] struct {
	clock        types.Clock
	sizer        sizing.Sizer[V]
	logger       *slog.Logger
	expiration   expiration.Strategy[V]
	refresh      refresh.Hook[V]
	loader       types.Loader[V]
	gateway      func(storageKey string) (persist.Gateway[V], error)
	writeThrough bool
}

// Option customizes a cache at construction time.
type Option[V any] func(*options[V])

// WithClock replaces the wall clock used for entry timestamps.
func WithClock[V any](clock types.Clock) Option[V] {
	return func(o *options[V]) { o.clock = clock }
}

// WithSizer replaces the default gob-based size estimate.
func WithSizer[V any](sizer sizing.Sizer[V]) Option[V] {
	return func(o *options[V]) { o.sizer = sizer }
}

// WithLogger sets the logger for absorbed failures. Defaults to slog.Default().
func WithLogger[V any](logger *slog.Logger) Option[V] {
	return func(o *options[V]) { o.logger = logger }
}

// WithExpiration replaces the fixed-TTL expiration strategy.
func WithExpiration[V any](strategy expiration.Strategy[V]) Option[V] {
	return func(o *options[V]) { o.expiration = strategy }
}

// WithRefreshHook runs hook after every cache hit.
func WithRefreshHook[V any](hook refresh.Hook[V]) Option[V] {
	return func(o *options[V]) { o.refresh = hook }
}

// WithLoader enables read-through loading for GetOrLoad.
func WithLoader[V any](loader types.Loader[V]) Option[V] {
	return func(o *options[V]) { o.loader = loader }
}

// WithGateway uses gateway for snapshots regardless of the storage key.
func WithGateway[V any](gateway persist.Gateway[V]) Option[V] {
	return func(o *options[V]) {
		o.gateway = func(string) (persist.Gateway[V], error) { return gateway, nil }
	}
}

// WithSnapshotFS stores snapshots on fs, named by the configured storage key.
func WithSnapshotFS[V any](fs billy.Filesystem) Option[V] {
	return func(o *options[V]) {
		o.gateway = func(key string) (persist.Gateway[V], error) {
			return persist.NewFileGateway[V](fs, key)
		}
	}
}

// WithWriteThrough saves snapshots synchronously, after the table lock is
// released but before the mutating call returns. The default is write-back.
func WithWriteThrough[V any]() Option[V] {
	return func(o *options[V]) { o.writeThrough = true }
}

// SetOption customizes a single Set call.
type SetOption = api.SetOption

// WithTTL overrides the configured default max age for one entry.
// A non-positive ttl stores the entry without any TTL, even when the
// expiration strategy would otherwise assign one.
func WithTTL(ttl time.Duration) SetOption {
	return func(o *api.SetOptions) {
		o.TTL = ttl
		o.TTLSet = true
	}
}

// WithMetadata attaches an opaque map to the entry. The map is copied.
func WithMetadata(metadata map[string]string) SetOption {
	return func(o *api.SetOptions) { o.Metadata = maps.Clone(metadata) }
}
