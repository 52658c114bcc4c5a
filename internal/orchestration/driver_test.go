package orchestration

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"

	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/iterator"
	"github.com/agbru/fibseq/internal/sequence"
)

func values(terms []Term) []int64 {
	out := make([]int64, len(terms))
	for i, t := range terms {
		out[i] = t.Value.Int64()
	}
	return out
}

func indices(terms []Term) []uint64 {
	out := make([]uint64, len(terms))
	for i, t := range terms {
		out[i] = t.Index
	}
	return out
}

func equal[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDrive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		src         func() iterator.Resumable[*big.Int, any]
		plan        Plan
		wantValues  []int64
		wantIndices []uint64
		exhausted   bool
	}{
		{
			name:        "plain pull",
			src:         func() iterator.Resumable[*big.Int, any] { return sequence.NewFibonacci() },
			plan:        Plan{Count: 7},
			wantValues:  []int64{0, 1, 1, 2, 3, 5, 8},
			wantIndices: []uint64{0, 1, 2, 3, 4, 5, 6},
		},
		{
			name:        "reset after emission",
			src:         func() iterator.Resumable[*big.Int, any] { return sequence.NewFibonacci() },
			plan:        Plan{Count: 11, ResetAt: []uint64{7}},
			wantValues:  []int64{0, 1, 1, 2, 3, 5, 8, 13, 0, 1, 1},
			wantIndices: []uint64{0, 1, 2, 3, 4, 5, 6, 7, 0, 1, 2},
		},
		{
			name:        "skip then pull",
			src:         func() iterator.Resumable[*big.Int, any] { return sequence.NewFibonacci() },
			plan:        Plan{Count: 3, Skip: 10},
			wantValues:  []int64{55, 89, 144},
			wantIndices: []uint64{10, 11, 12},
		},
		{
			name:        "lucas with reset at first call",
			src:         func() iterator.Resumable[*big.Int, any] { return sequence.NewLucas() },
			plan:        Plan{Count: 3, ResetAt: []uint64{0}},
			wantValues:  []int64{2, 2, 1},
			wantIndices: []uint64{0, 0, 1},
		},
		{
			name: "bounded producer stops early",
			src: func() iterator.Resumable[*big.Int, any] {
				return iterator.Passive[*big.Int, any](iterator.FromSlice(big.NewInt(4), big.NewInt(5), big.NewInt(6)))
			},
			plan:        Plan{Count: 10, ResetAt: []uint64{0}},
			wantValues:  []int64{4, 5, 6},
			wantIndices: []uint64{0, 1, 2},
			exhausted:   true,
		},
		{
			name: "bounded producer drained with zero count",
			src: func() iterator.Resumable[*big.Int, any] {
				return iterator.Passive[*big.Int, any](iterator.FromSlice(big.NewInt(1), big.NewInt(2)))
			},
			plan:        Plan{},
			wantValues:  []int64{1, 2},
			wantIndices: []uint64{0, 1},
			exhausted:   true,
		},
		{
			name: "fallback skip on a plain producer",
			src: func() iterator.Resumable[*big.Int, any] {
				return iterator.Passive[*big.Int, any](iterator.FromSlice(big.NewInt(1), big.NewInt(2), big.NewInt(3)))
			},
			plan:        Plan{Count: 5, Skip: 2},
			wantValues:  []int64{3},
			wantIndices: []uint64{2},
			exhausted:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := Drive(context.Background(), tt.name, tt.src(), tt.plan, nil)
			if res.Err != nil {
				t.Fatalf("Drive() error: %v", res.Err)
			}
			if got := values(res.Terms); !equal(got, tt.wantValues) {
				t.Errorf("values = %v, want %v", got, tt.wantValues)
			}
			if got := indices(res.Terms); !equal(got, tt.wantIndices) {
				t.Errorf("indices = %v, want %v", got, tt.wantIndices)
			}
			if res.Exhausted != tt.exhausted {
				t.Errorf("Exhausted = %v, want %v", res.Exhausted, tt.exhausted)
			}
			if res.Produced != uint64(len(tt.wantValues)) {
				t.Errorf("Produced = %d, want %d", res.Produced, len(tt.wantValues))
			}
		})
	}
}

func TestDrive_Sink(t *testing.T) {
	t.Parallel()

	var seen []int64
	sink := func(term Term) error {
		seen = append(seen, term.Value.Int64())
		if len(seen) == 4 {
			return iterator.ErrStop
		}
		return nil
	}
	res := Drive(context.Background(), "fibonacci", sequence.NewFibonacci(), Plan{Count: 100}, sink)

	if res.Err != nil {
		t.Fatalf("ErrStop should not be reported, got %v", res.Err)
	}
	if !equal(seen, []int64{0, 1, 1, 2}) {
		t.Errorf("sink saw %v", seen)
	}
	if len(res.Terms) != 0 {
		t.Error("terms should not be collected when a sink is given")
	}
	if res.Last.Int64() != 2 {
		t.Errorf("Last = %v, want 2", res.Last)
	}
}

func TestDrive_SinkError(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk full")
	res := Drive(context.Background(), "lucas", sequence.NewLucas(), Plan{Count: 5},
		func(Term) error { return boom })

	var seqErr apperrors.SequenceError
	if !errors.As(res.Err, &seqErr) || seqErr.Kind != "lucas" || !errors.Is(res.Err, boom) {
		t.Errorf("Err = %v, want SequenceError wrapping the sink error", res.Err)
	}
}

func TestDrive_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	res := Drive(ctx, "fibonacci", sequence.NewFibonacci(), Plan{}, func(Term) error {
		calls++
		if calls == 50 {
			cancel()
		}
		return nil
	})

	if !errors.Is(res.Err, context.Canceled) {
		t.Fatalf("Err = %v, want context.Canceled", res.Err)
	}
	if res.Produced != 50 {
		t.Errorf("Produced = %d, want 50", res.Produced)
	}
	if apperrors.ExitCode(res.Err) != apperrors.ExitErrorCanceled {
		t.Errorf("ExitCode = %d", apperrors.ExitCode(res.Err))
	}
}

func TestDrive_SkipCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := Drive(ctx, "fibonacci", sequence.NewFibonacci(), Plan{Count: 3, Skip: 1000}, nil)
	if !errors.Is(res.Err, context.Canceled) || res.Produced != 0 {
		t.Errorf("Err = %v, Produced = %d", res.Err, res.Produced)
	}
	if !strings.Contains(res.Err.Error(), "skipping 1000 terms") {
		t.Errorf("Err = %q, want the skip context", res.Err)
	}
}

func TestDriveAll(t *testing.T) {
	t.Parallel()

	names := []string{"fibonacci", "lucas", "counter", "nope"}
	spy := &spyObserver{}
	results := DriveAll(context.Background(), sequence.NewDefaultFactory(), names, Plan{Count: 5, ResetAt: []uint64{2}}, spy)

	want := map[string][]int64{
		"fibonacci": {0, 1, 1, 0, 1},
		"lucas":     {2, 1, 3, 2, 1},
		"counter":   {0, 1, 2, 0, 1},
	}
	for i, res := range results {
		if res.Name != names[i] {
			t.Errorf("result %d is %q, want %q", i, res.Name, names[i])
		}
		if res.Name == "nope" {
			if !errors.Is(res.Err, sequence.ErrUnknownKind) {
				t.Errorf("unknown kind error = %v", res.Err)
			}
			continue
		}
		if res.Err != nil {
			t.Errorf("%s: %v", res.Name, res.Err)
		}
		if got := values(res.Terms); !equal(got, want[res.Name]) {
			t.Errorf("%s values = %v, want %v", res.Name, got, want[res.Name])
		}
	}
	if n := len(spy.snapshot()); n != 15 {
		t.Errorf("observer saw %d events, want 15", n)
	}
}

func TestVerifyDeterminism(t *testing.T) {
	t.Parallel()

	factory := sequence.NewDefaultFactory()
	plan := Plan{Count: 200, ResetAt: []uint64{10, 11, 150}, Skip: 5}
	for _, name := range factory.List() {
		if err := VerifyDeterminism(context.Background(), factory, name, plan); err != nil {
			t.Errorf("VerifyDeterminism(%s) = %v", name, err)
		}
	}

	if err := VerifyDeterminism(context.Background(), factory, "nope", plan); !errors.Is(err, sequence.ErrUnknownKind) {
		t.Errorf("unknown kind error = %v", err)
	}
}

func TestVerifyDeterminism_DetectsDivergence(t *testing.T) {
	t.Parallel()

	// Every Create hands out a counter starting one higher than the last.
	factory := sequence.NewDefaultFactory()
	var (
		mu   sync.Mutex
		next int64
	)
	_ = factory.Register("drift", "diverging counters", func() sequence.Source {
		mu.Lock()
		defer mu.Unlock()
		next++
		return sequence.NewCounter(next)
	})

	err := VerifyDeterminism(context.Background(), factory, "drift", Plan{Count: 3})
	var mismatch apperrors.MismatchError
	if !errors.As(err, &mismatch) || mismatch.Kind != "drift" || mismatch.Index != 0 {
		t.Errorf("err = %v, want MismatchError at 0", err)
	}
}
