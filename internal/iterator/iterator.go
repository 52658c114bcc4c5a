// Package iterator defines the pull-based iteration protocol shared by every
// sequence producer in fibseq.
//
// A producer hands out one Result per Advance call. A Result is either a
// Produced value or the Exhausted marker; the two variants are distinct types,
// so an exhausted result has no value to read by construction.
//
// Example usage:
//
//	it := iterator.FromSlice("a", "b", "c")
//	for {
//	    v, ok := iterator.Unpack(it.Advance())
//	    if !ok {
//	        break
//	    }
//	    // Use v
//	}
package iterator

// Result is the outcome of a single Advance call. It is implemented only by
// Produced and Exhausted.
type Result[T any] interface {
	// Done reports whether the producer has no further values.
	Done() bool

	// sealed ties each variant to its type argument, so a Produced[string]
	// cannot stand in for a Result[int].
	sealed() T
}

// Produced carries a value emitted by a producer.
type Produced[T any] struct {
	Value T
}

// Done always returns false for a produced value.
func (Produced[T]) Done() bool { return false }

func (p Produced[T]) sealed() T { return p.Value }

// Exhausted marks the end of a finite sequence.
type Exhausted[T any] struct{}

// Done always returns true for the end marker.
func (Exhausted[T]) Done() bool { return true }

func (Exhausted[T]) sealed() (zero T) { return }

var (
	_ Result[int] = Produced[int]{}
	_ Result[int] = Exhausted[int]{}
)

// Unpack returns the value held by r and true, or the zero value and false
// when r is Exhausted (or nil).
func Unpack[T any](r Result[T]) (T, bool) {
	if p, ok := r.(Produced[T]); ok {
		return p.Value, true
	}
	var zero T
	return zero, false
}

// Iterator is the minimal contract every sequence producer satisfies.
//
// Advance returns exactly one Result per call. It never blocks and never
// fails: a producer that cannot compute further values reports Exhausted.
// Once a finite producer has returned Exhausted it must keep returning it.
type Iterator[T any] interface {
	Advance() Result[T]
}

// Resumable is an Iterator whose advance step accepts a control value from
// the caller. The control value may change the producer's state for the
// calls that follow; values the producer does not recognise are ignored.
type Resumable[T, C any] interface {
	Iterator[T]

	// Resume advances the producer, handing it ctl for this step.
	Resume(ctl C) Result[T]
}
