package expiration

import (
	"sync"
	"time"
)

/*
Sweeper runs the active half of expiration: a recurring task that removes
every expired entry without waiting for someone to read it.

The sweeper is owned by one cache instance. It does not start on its own;
the owner calls Start, may call Reset to change the period, and must call
Stop at teardown. Once Stop returns no further sweep runs.

The sweep function usually takes the cache lock. Never call Reset or Stop
while holding that lock: they wait for an in-progress sweep to finish.
*/
type Sweeper struct {
	sweep func()

	mu       sync.Mutex
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewSweeper creates a stopped sweeper that will call sweep on every tick.
func NewSweeper(sweep func()) *Sweeper {
	return &Sweeper{sweep: sweep}
}

// Start schedules the sweep every interval. It is the same as Reset.
func (s *Sweeper) Start(interval time.Duration) {
	s.Reset(interval)
}

// Reset cancels the current schedule, if any, and starts a new one with
// the given period. A non-positive interval leaves the sweeper stopped.
func (s *Sweeper) Reset(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	if interval <= 0 {
		return
	}

	s.interval = interval
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(interval, s.stop, s.done)
}

// Stop cancels the schedule and waits for a running sweep to return.
// It is safe to call more than once.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Interval returns the current period, or 0 when stopped.
func (s *Sweeper) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Running reports whether a schedule is active.
func (s *Sweeper) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

func (s *Sweeper) stopLocked() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.stop = nil
	s.done = nil
	s.interval = 0
}

func (s *Sweeper) loop(interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			// A tick and a stop can be ready together; stop wins.
			select {
			case <-stop:
				return
			default:
			}
			s.sweep()
		case <-stop:
			return
		}
	}
}
