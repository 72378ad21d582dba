// Package sizing estimates how many bytes a cached value occupies.
//
// The estimate is what the cache charges against its byte budget. It is
// computed once per Set and never recomputed, so it only needs to be
// stable, not exact.
package sizing

import (
	"encoding/gob"

	"github.com/jmgilman/go/errors"
)

// FallbackSize is charged for a value whose size cannot be computed.
const FallbackSize int64 = 1024

// CodeSizeComputation marks a value the Sizer could not measure.
const CodeSizeComputation errors.ErrorCode = "SIZE_COMPUTATION_FAILED"

// Sizeable lets a value report its own size and skip encoding.
type Sizeable interface {
	SizeBytes() int64
}

// Sizer computes the byte-size estimate for a value.
type Sizer[V any] interface {
	Size(value V) (int64, error)
}

// Func adapts a plain function to the Sizer interface.
type Func[V any] func(value V) (int64, error)

func (f Func[V]) Size(value V) (int64, error) {
	return f(value)
}

// GobSizer is the default Sizer.
//
// Strings and byte slices are charged their length, Sizeable values
// report their own size, and everything else is charged the length of
// its gob encoding.
type GobSizer[V any] struct{}

func (GobSizer[V]) Size(value V) (int64, error) {
	switch v := any(value).(type) {
	case Sizeable:
		return v.SizeBytes(), nil
	case string:
		return int64(len(v)), nil
	case []byte:
		return int64(len(v)), nil
	case nil:
		return 0, errors.New(CodeSizeComputation, "cannot size a nil value")
	}

	var c counter
	if err := gob.NewEncoder(&c).Encode(value); err != nil {
		return 0, errors.Wrap(err, CodeSizeComputation, "gob encoding failed")
	}
	return c.n, nil
}

// counter is an io.Writer that only counts.
type counter struct {
	n int64
}

func (c *counter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}
