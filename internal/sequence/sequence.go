package sequence

import (
	"context"
	"math/big"

	"github.com/agbru/fibseq/internal/iterator"
)

// Source is the contract the registry hands out: a resumable producer of
// integers that can also be reset, fast-forwarded and asked for its position.
type Source interface {
	iterator.Resumable[*big.Int, any]

	// Index returns the position of the value the next advance will emit,
	// counted from construction or from the last reset.
	Index() uint64

	// Reset restores the initial state before the next emission.
	Reset()

	// Skip drops the next n values without returning them.
	Skip(ctx context.Context, n uint64) error
}

// Sequence is an infinite producer driven by a Recurrence. It never reports
// Exhausted; consumption ends when the caller stops calling Advance.
//
// Thread Safety:
// Sequence is NOT safe for concurrent use. Give each goroutine its own
// instance or guard a shared one with a mutex.
//
// Example:
//
//	seq := sequence.NewFibonacci()
//	for i := 0; i < 7; i++ {
//	    v, _ := iterator.Unpack(seq.Advance()) // 0 1 1 2 3 5 8
//	}
//	v, _ := iterator.Unpack(seq.Resume(true)) // 13, then the sequence restarts
//	v, _ = iterator.Unpack(seq.Advance())     // 0
type Sequence struct {
	rec   Recurrence
	state State
	index uint64
}

// New creates a Sequence whose initial (and reset) vector is initial.
// The vector is copied.
func New(initial State) *Sequence {
	rec := Recurrence{Initial: initial.Clone()}
	return &Sequence{rec: rec, state: rec.Initial.Clone()}
}

// NewFibonacci creates a Sequence emitting 0, 1, 1, 2, 3, 5, 8, ...
func NewFibonacci() *Sequence { return New(Fibonacci().Initial) }

// NewLucas creates a Sequence emitting 2, 1, 3, 4, 7, 11, ...
func NewLucas() *Sequence { return New(Lucas().Initial) }

// Advance emits the next value without a control signal.
func (s *Sequence) Advance() iterator.Result[*big.Int] {
	return s.Resume(nil)
}

// Resume emits the next value and then applies ctl. The emitted value is
// computed from the state before this call; a reset or reseed only shows up
// from the following call on. The returned value is a copy.
func (s *Sequence) Resume(ctl any) iterator.Result[*big.Int] {
	next, out := s.rec.Step(s.state, ctl)
	s.state = next
	if _, reseed := reseedOf(ctl); IsReset(ctl) || reseed {
		s.index = 0
	} else {
		s.index++
	}
	return iterator.Produced[*big.Int]{Value: out}
}

// Index implements Source.
func (s *Sequence) Index() uint64 { return s.index }

// Reset implements Source. Unlike Resume(Reset) it takes effect before the
// next emission, which will be the first term of the initial vector.
func (s *Sequence) Reset() {
	s.state = s.rec.Initial.Clone()
	s.index = 0
}

// Skip implements Source. For a state (a, b) the k-th upcoming value is
// a·F(k-1) + b·F(k), so the jump costs one fast-doubling evaluation of
// F(n-1), F(n), F(n+1) regardless of n.
func (s *Sequence) Skip(ctx context.Context, n uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	fn, fn1, err := cachedFibPair(ctx, n)
	if err != nil {
		return err
	}
	fnm1 := new(big.Int).Sub(fn1, fn)

	a, b := s.state.First, s.state.Second
	first := new(big.Int).Mul(a, fnm1)
	first.Add(first, new(big.Int).Mul(b, fn))
	second := new(big.Int).Mul(a, fn)
	second.Add(second, new(big.Int).Mul(b, fn1))

	s.state = State{First: first, Second: second}
	s.index += n
	return nil
}

// Initial returns a copy of the vector a reset restores.
func (s *Sequence) Initial() State { return s.rec.Initial.Clone() }

// compile-time interface check
var _ Source = (*Sequence)(nil)
