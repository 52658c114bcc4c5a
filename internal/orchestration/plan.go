// Package orchestration drives sequences on behalf of the CLI and the HTTP
// server. A Plan decides how many terms to pull and which calls carry a
// reset signal; Drive owns the loop and the call counter, so the sequence
// itself never keeps a global count.
package orchestration

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Plan describes one run over a sequence.
type Plan struct {
	// Count is the number of terms to pull. Zero pulls until the producer is
	// exhausted, which never happens for the recurrence kinds.
	Count uint64
	// ResetAt lists the zero-based call indices that carry a reset signal.
	// The term returned by such a call is unaffected; the reset shows from
	// the next call on.
	ResetAt []uint64
	// Skip drops this many terms before the first call.
	Skip uint64
}

// Signal returns the control value for the given call: true when call is
// listed in ResetAt, false otherwise.
func (p Plan) Signal(call uint64) bool {
	return slices.Contains(p.ResetAt, call)
}

// Resets counts the reset signals that fall inside the first Count calls.
func (p Plan) Resets() int {
	n := 0
	for _, call := range p.ResetAt {
		if p.Count == 0 || call < p.Count {
			n++
		}
	}
	return n
}

// String renders the plan for logs.
func (p Plan) String() string {
	return fmt.Sprintf("count=%d reset_at=%s skip=%d", p.Count, FormatCalls(p.ResetAt), p.Skip)
}

// ParseCalls parses a comma separated list of call indices such as
// "7,20,21". Blank entries are ignored and duplicates collapse.
func ParseCalls(s string) ([]uint64, error) {
	var calls []uint64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid call index %q: must be a non-negative integer", field)
		}
		calls = append(calls, v)
	}
	slices.Sort(calls)
	return slices.Compact(calls), nil
}

// FormatCalls is the inverse of ParseCalls.
func FormatCalls(calls []uint64) string {
	parts := make([]string, len(calls))
	for i, c := range calls {
		parts[i] = strconv.FormatUint(c, 10)
	}
	return strings.Join(parts, ",")
}
