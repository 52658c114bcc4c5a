package sequence

import (
	"context"
	"math/big"
	"testing"
)

// FuzzStep checks the recurrence and the reset ordering for arbitrary
// machine-sized seeds.
func FuzzStep(f *testing.F) {
	f.Add(int64(0), int64(1), false)
	f.Add(int64(0), int64(1), true)
	f.Add(int64(2), int64(1), false)
	f.Add(int64(-5), int64(8), true)
	f.Add(int64(1<<62), int64(1<<62), false)

	rec := Fibonacci()

	f.Fuzz(func(t *testing.T, a, b int64, reset bool) {
		s := NewState(a, b)
		next, out := rec.Step(s, reset)

		if out.Cmp(big.NewInt(a)) != 0 {
			t.Fatalf("Step emitted %v, want the first term %d", out, a)
		}
		if reset {
			if !next.Equal(rec.Initial) {
				t.Fatalf("Step with reset moved to %v, want %v", next, rec.Initial)
			}
			return
		}
		sum := new(big.Int).Add(big.NewInt(a), big.NewInt(b))
		if next.First.Cmp(big.NewInt(b)) != 0 || next.Second.Cmp(sum) != 0 {
			t.Fatalf("Step(%d, %d) moved to %v, want (%d, %v)", a, b, next, b, sum)
		}
	})
}

// FuzzSkipMatchesStepping verifies Skip against plain advancing.
func FuzzSkipMatchesStepping(f *testing.F) {
	f.Add(int64(0), int64(1), uint16(0))
	f.Add(int64(0), int64(1), uint16(93))
	f.Add(int64(2), int64(1), uint16(500))
	f.Add(int64(-7), int64(3), uint16(17))

	f.Fuzz(func(t *testing.T, a, b int64, n uint16) {
		jumped, stepped := New(NewState(a, b)), New(NewState(a, b))
		if err := jumped.Skip(context.Background(), uint64(n)); err != nil {
			t.Fatalf("Skip(%d) error: %v", n, err)
		}
		for i := uint16(0); i < n; i++ {
			stepped.Advance()
		}
		if !jumped.state.Equal(stepped.state) {
			t.Fatalf("Skip(%d) from (%d, %d) = %v, stepping gives %v", n, a, b, jumped.state, stepped.state)
		}
	})
}
