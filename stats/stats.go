// Package stats keeps the running counters of a cache and turns them into
// a Statistics snapshot on demand.
package stats

import (
	"time"

	"go.uber.org/atomic"

	"github.com/krisalay/boundcache/types"
)

// Statistics is a point-in-time view of a cache.
type Statistics struct {
	Hits      int64
	Misses    int64
	Sets      int64
	Deletes   int64
	Evictions int64

	// CurrentSizeBytes and CurrentEntries describe the live table.
	CurrentSizeBytes int64
	CurrentEntries   int64

	// HitRate is Hits / (Hits + Misses), or 0 before the first Get.
	HitRate float64

	// AverageAccessTimeMs is the lifetime mean duration of Get calls.
	AverageAccessTimeMs float64
}

// HitRate returns hits / (hits + misses), or 0 when both are zero.
func HitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// Recorder collects cache counters. It implements types.Metrics so the
// engine can feed it directly.
type Recorder struct {
	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	deletes   atomic.Int64
	evictions atomic.Int64
	expired   atomic.Int64

	accessTotal   atomic.Duration
	accessSamples atomic.Int64
}

var _ types.Metrics = (*Recorder)(nil)

// NewRecorder creates a recorder with every counter at zero.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Hit()      { r.hits.Inc() }
func (r *Recorder) Miss()     { r.misses.Inc() }
func (r *Recorder) Set()      { r.sets.Inc() }
func (r *Recorder) Eviction() { r.evictions.Inc() }
func (r *Recorder) Expire()   { r.expired.Inc() }

// Delete adds n removed entries. Zero is ignored.
func (r *Recorder) Delete(n int) {
	if n > 0 {
		r.deletes.Add(int64(n))
	}
}

// Access adds one Get duration to the running average.
func (r *Recorder) Access(d time.Duration) {
	r.accessTotal.Add(d)
	r.accessSamples.Inc()
}

// Expired returns how many entries were removed because their TTL passed.
// Expired removals are also counted in Deletes.
func (r *Recorder) Expired() int64 {
	return r.expired.Load()
}

// Snapshot combines the counters with the live table size. The caller
// passes the table figures it read under the same lock that guards the
// counters' updates.
func (r *Recorder) Snapshot(currentSizeBytes, currentEntries int64) Statistics {
	hits := r.hits.Load()
	misses := r.misses.Load()

	var avg float64
	if n := r.accessSamples.Load(); n > 0 {
		avg = float64(r.accessTotal.Load()) / float64(n) / float64(time.Millisecond)
	}

	return Statistics{
		Hits:                hits,
		Misses:              misses,
		Sets:                r.sets.Load(),
		Deletes:             r.deletes.Load(),
		Evictions:           r.evictions.Load(),
		CurrentSizeBytes:    currentSizeBytes,
		CurrentEntries:      currentEntries,
		HitRate:             HitRate(hits, misses),
		AverageAccessTimeMs: avg,
	}
}

// Reset sets every counter back to zero.
func (r *Recorder) Reset() {
	r.hits.Store(0)
	r.misses.Store(0)
	r.sets.Store(0)
	r.deletes.Store(0)
	r.evictions.Store(0)
	r.expired.Store(0)
	r.accessTotal.Store(0)
	r.accessSamples.Store(0)
}
