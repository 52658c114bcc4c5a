package sequence

// Signal is a named control value a caller can hand to Resume.
type Signal int

const (
	// None leaves the state untouched. It is equivalent to passing nil.
	None Signal = iota
	// Reset restores the initial state vector after the current emission.
	Reset
)

// String implements fmt.Stringer.
func (s Signal) String() string {
	switch s {
	case None:
		return "none"
	case Reset:
		return "reset"
	default:
		return "unknown"
	}
}

// Reseed is a control payload that replaces the state vector after the
// current emission. The new vector does not become the reset target.
type Reseed struct {
	State State
}

// IsReset reports whether ctl asks for a reset: the boolean true or the
// Reset signal. Every other value, including unknown types, is ignored.
func IsReset(ctl any) bool {
	switch v := ctl.(type) {
	case bool:
		return v
	case Signal:
		return v == Reset
	default:
		return false
	}
}

// reseedOf extracts a Reseed payload (by value or pointer) from ctl.
func reseedOf(ctl any) (State, bool) {
	switch v := ctl.(type) {
	case Reseed:
		return v.State, true
	case *Reseed:
		if v != nil {
			return v.State, true
		}
	}
	return State{}, false
}
