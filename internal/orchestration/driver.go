package orchestration

import (
	"context"
	"errors"
	"math/big"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/iterator"
	"github.com/agbru/fibseq/internal/sequence"
)

// Term is one value pulled by Drive.
type Term struct {
	// Call is the zero-based number of the call that produced the term.
	Call uint64
	// Index is the term's position in the sequence at the time of the call.
	// It drops back to 0 after a reset. Producers without an index report
	// Call + Skip.
	Index uint64
	// Value is the emitted term.
	Value *big.Int
	// Reset is true when the call carried a reset signal.
	Reset bool
}

// Sink receives each term as Drive produces it. Returning an error stops
// the run; iterator.ErrStop stops it without reporting a failure.
type Sink func(Term) error

// Result summarizes one Drive run.
type Result struct {
	Name string
	// Terms holds every term when Drive was called without a sink.
	Terms []Term
	// Produced is the number of terms emitted.
	Produced uint64
	// Resets is the number of calls that carried a reset signal.
	Resets int
	// Last is the final term emitted, nil if none.
	Last *big.Int
	// Exhausted is true when the producer ran out before Count.
	Exhausted bool
	Duration  time.Duration
	Err       error
}

// Skipper is implemented by producers that can drop terms without
// emitting them.
type Skipper interface {
	Skip(ctx context.Context, n uint64) error
}

type indexer interface {
	Index() uint64
}

// ctxCheckInterval bounds how many plain Advance calls a fallback skip makes
// between context checks.
const ctxCheckInterval = 1024

// Drive pulls terms from src according to plan. Each call sends
// plan.Signal(call) as the control value, forwards the term to sink and
// notifies observers. ctx is checked before every call.
//
// When sink is nil the terms are collected into Result.Terms.
func Drive(ctx context.Context, name string, src iterator.Resumable[*big.Int, any], plan Plan, sink Sink, observers ...Observer) Result {
	return drive(ctx, 0, name, src, plan, sink, NewSubject(observers...))
}

func drive(ctx context.Context, slot int, name string, src iterator.Resumable[*big.Int, any], plan Plan, sink Sink, subject *Subject) Result {
	start := time.Now()
	res := Result{Name: name}

	if sink == nil {
		sink = func(t Term) error {
			res.Terms = append(res.Terms, t)
			return nil
		}
	}

	if plan.Skip > 0 {
		if err := skip(ctx, src, plan.Skip); err != nil {
			res.Err = apperrors.NewSequenceError(name, apperrors.WrapError(err, "skipping %d terms", plan.Skip))
			res.Duration = time.Since(start)
			return res
		}
	}

	ix, hasIndex := src.(indexer)
	for call := uint64(0); plan.Count == 0 || call < plan.Count; call++ {
		if err := ctx.Err(); err != nil {
			res.Err = apperrors.NewSequenceError(name, err)
			break
		}

		index := call + plan.Skip
		if hasIndex {
			index = ix.Index()
		}
		reset := plan.Signal(call)
		v, ok := iterator.Unpack(src.Resume(reset))
		if !ok {
			res.Exhausted = true
			break
		}

		term := Term{Call: call, Index: index, Value: v, Reset: reset}
		res.Produced++
		res.Last = v
		if reset {
			res.Resets++
		}
		subject.Notify(Event{Name: name, Slot: slot, Term: term, Total: plan.Count})

		if err := sink(term); err != nil {
			if !errors.Is(err, iterator.ErrStop) {
				res.Err = apperrors.NewSequenceError(name, err)
			}
			break
		}
	}
	res.Duration = time.Since(start)
	return res
}

// skip drops n terms, using the producer's own Skip when it has one.
func skip(ctx context.Context, src iterator.Resumable[*big.Int, any], n uint64) error {
	if s, ok := src.(Skipper); ok {
		return s.Skip(ctx, n)
	}
	for i := uint64(0); i < n; i++ {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if src.Advance().Done() {
			return nil
		}
	}
	return nil
}

// DriveAll runs plan against one fresh instance per name, concurrently.
// Results come back in the order of names. A failing run does not cancel
// the others; its error is recorded in its Result.
func DriveAll(ctx context.Context, factory sequence.Factory, names []string, plan Plan, observers ...Observer) []Result {
	g, ctx := errgroup.WithContext(ctx)
	results := make([]Result, len(names))
	subject := NewSubject(observers...)

	for i, name := range names {
		g.Go(func() error {
			src, err := factory.Create(name)
			if err != nil {
				results[i] = Result{Name: name, Err: apperrors.NewSequenceError(name, err)}
				return nil
			}
			results[i] = drive(ctx, i, name, src, plan, nil, subject)
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// VerifyDeterminism drives two fresh instances of name with the same plan
// concurrently and compares them term by term. It returns a MismatchError
// naming the first differing call, or the first run error.
func VerifyDeterminism(ctx context.Context, factory sequence.Factory, name string, plan Plan) error {
	g, gctx := errgroup.WithContext(ctx)
	var runs [2]Result

	for i := range runs {
		g.Go(func() error {
			src, err := factory.Create(name)
			if err != nil {
				return apperrors.NewSequenceError(name, err)
			}
			runs[i] = drive(gctx, i, name, src, plan, nil, NewSubject())
			return runs[i].Err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	a, b := runs[0].Terms, runs[1].Terms
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].Value.Cmp(b[i].Value) != 0 {
			return apperrors.MismatchError{Kind: name, Index: i}
		}
	}
	if len(a) != len(b) {
		return apperrors.MismatchError{Kind: name, Index: min(len(a), len(b))}
	}
	return nil
}
