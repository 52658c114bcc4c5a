package sequence

import "math/big"

// Recurrence is the pure step function behind a Sequence. Initial is the
// vector a reset signal restores.
type Recurrence struct {
	Initial State
}

// Fibonacci is the recurrence seeded with (0, 1).
func Fibonacci() Recurrence { return Recurrence{Initial: NewState(0, 1)} }

// Lucas is the recurrence seeded with (2, 1).
func Lucas() Recurrence { return Recurrence{Initial: NewState(2, 1)} }

// Step computes one advance without touching its inputs:
//
//  1. out is s.First;
//  2. the vector moves to (s.Second, s.First+s.Second);
//  3. if ctl is a reset the vector becomes Initial instead, and a Reseed
//     payload replaces it with the payload's vector.
//
// The returned state and value share no memory with s, ctl, or r.Initial.
func (r Recurrence) Step(s State, ctl any) (State, *big.Int) {
	out := cloneInt(s.First)

	var next State
	switch seed, ok := reseedOf(ctl); {
	case IsReset(ctl):
		next = r.Initial.Clone()
	case ok:
		next = seed.Clone()
	default:
		next = State{
			First:  cloneInt(s.Second),
			Second: new(big.Int).Add(cloneInt(s.First), cloneInt(s.Second)),
		}
	}
	return next, out
}
