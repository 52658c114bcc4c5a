// Package sequence implements resumable, lazily computed integer sequences
// defined by the recurrence x(k+2) = x(k) + x(k+1).
//
// A Sequence owns a two-term state vector. Every advance emits the first
// term, steps the recurrence, and then applies the control signal the caller
// supplied for that step. A reset signal therefore never changes the value
// returned by the call that carries it; it only affects the calls after it.
package sequence

import (
	"fmt"
	"math/big"
)

// State is the ordered pair of terms a recurrence steps from. First is the
// value the next advance emits.
type State struct {
	First  *big.Int
	Second *big.Int
}

// NewState builds a state vector from two machine integers.
func NewState(first, second int64) State {
	return State{First: big.NewInt(first), Second: big.NewInt(second)}
}

// StateOf builds a state vector holding copies of first and second.
// Nil inputs are treated as zero.
func StateOf(first, second *big.Int) State {
	return State{First: cloneInt(first), Second: cloneInt(second)}
}

// ParseState parses two base-10 integers into a state vector.
func ParseState(first, second string) (State, error) {
	a, ok := new(big.Int).SetString(first, 10)
	if !ok {
		return State{}, fmt.Errorf("invalid first term %q", first)
	}
	b, ok := new(big.Int).SetString(second, 10)
	if !ok {
		return State{}, fmt.Errorf("invalid second term %q", second)
	}
	return State{First: a, Second: b}, nil
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	return StateOf(s.First, s.Second)
}

// Equal reports whether s and o hold the same terms.
func (s State) Equal(o State) bool {
	return cloneInt(s.First).Cmp(cloneInt(o.First)) == 0 &&
		cloneInt(s.Second).Cmp(cloneInt(o.Second)) == 0
}

// String renders the vector as "(first, second)".
func (s State) String() string {
	return fmt.Sprintf("(%s, %s)", cloneInt(s.First), cloneInt(s.Second))
}

func cloneInt(x *big.Int) *big.Int {
	if x == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(x)
}
