package cache

import (
	"sync"

	"github.com/jmgilman/go/errors"
)

/*
Shared is the single owner of a cache that several parts of an
application need to use together. The cache is built on the first Get;
every caller receives the same handle and the same construction error.

This replaces a package-level singleton: whoever creates the Shared
decides the configuration and passes the Shared down explicitly.
Once Close has run, Get reports SERVICE_UNAVAILABLE.
*/
type Shared[V any] struct {
	build func() (*Cache[V], error)

	mu     sync.Mutex
	built  bool
	closed bool
	cache  *Cache[V]
	err    error
}

// NewShared defers construction to build until the first Get.
func NewShared[V any](build func() (*Cache[V], error)) *Shared[V] {
	return &Shared[V]{build: build}
}

// Get returns the shared cache, building it on first use.
func (s *Shared[V]) Get() (*Cache[V], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.New(errors.CodeUnavailable, "shared cache closed")
	}
	if !s.built {
		s.cache, s.err = s.build()
		s.built = true
	}
	return s.cache, s.err
}

// Close closes the shared cache if it was ever built. A cache that was
// never built stays unbuilt.
func (s *Shared[V]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if s.cache != nil {
		s.cache.Close()
	}
}
