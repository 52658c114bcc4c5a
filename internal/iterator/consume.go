package iterator

import (
	"errors"
	"iter"
)

// ErrStop may be returned by a ForEach callback to end the loop early
// without reporting an error.
var ErrStop = errors.New("iterator: stop")

// Take pulls at most n values from it. The result is shorter than n only if
// the producer was exhausted first.
func Take[T any](it Iterator[T], n int) []T {
	if n <= 0 {
		return nil
	}
	out := make([]T, 0, n)
	for len(out) < n {
		v, ok := Unpack(it.Advance())
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

// Drain pulls values until the producer is exhausted or limit values have
// been collected. A limit of zero or less means no limit, which never returns
// for an infinite producer.
func Drain[T any](it Iterator[T], limit int) []T {
	var out []T
	for limit <= 0 || len(out) < limit {
		v, ok := Unpack(it.Advance())
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

// ForEach forwards up to limit values to fn (no limit when limit <= 0).
// It stops at the first error returned by fn; ErrStop ends the loop and
// ForEach returns nil.
func ForEach[T any](it Iterator[T], limit int, fn func(index int, v T) error) error {
	for i := 0; limit <= 0 || i < limit; i++ {
		v, ok := Unpack(it.Advance())
		if !ok {
			return nil
		}
		if err := fn(i, v); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
	return nil
}

// Seq exposes it as a range-over-func sequence. Each range loop pulls from
// the same underlying producer, so a second loop continues where the first
// one stopped.
func Seq[T any](it Iterator[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, ok := Unpack(it.Advance())
			if !ok || !yield(v) {
				return
			}
		}
	}
}
