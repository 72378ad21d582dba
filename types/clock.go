package types

import "time"

// Clock supplies the current time to everything that stamps or compares
// entry timestamps. Tests swap in a manual clock to get reproducible orderings.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
