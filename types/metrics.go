package types

import "time"

// This file defines how the cache reports what it is doing.

/*
Metrics is the set of events the cache emits while it works.
The cache calls these methods while it holds its table lock, so
implementations must be fast and must never call back into the cache.
*/
type Metrics interface {

	// Hit is called when Get returns a live entry.
	Hit()

	// Miss is called when Get finds nothing, or finds an expired entry.
	Miss()

	// Set is called once per successful Set, including replacements.
	Set()

	// Delete is called with the number of entries removed by one operation.
	Delete(n int)

	// Eviction is called once per entry removed to make room for a new one.
	Eviction()

	// Expire is called when an entry is removed because its TTL passed.
	Expire()

	// Access is called after every Get with the time the call took.
	Access(d time.Duration)
}

/*
NoopMetrics is a "do nothing" implementation of Metrics.

It lets the engine call metric hooks unconditionally instead of
guarding every call with a nil check.
*/
type NoopMetrics struct{}

func (NoopMetrics) Hit()                 {}
func (NoopMetrics) Miss()                {}
func (NoopMetrics) Set()                 {}
func (NoopMetrics) Delete(int)           {}
func (NoopMetrics) Eviction()            {}
func (NoopMetrics) Expire()              {}
func (NoopMetrics) Access(time.Duration) {}
