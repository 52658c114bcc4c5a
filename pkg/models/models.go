// Package models defines the JSON payloads shared by the HTTP API and the
// CLI's -json output.
package models

import (
	"math/big"
)

// Term is one emitted value. Value is rendered in base 10 as a string so
// that clients never lose precision on large terms.
type Term struct {
	Call  uint64 `json:"call"`
	Index uint64 `json:"index"`
	Value string `json:"value"`
	// Reset is set when the call that produced this term carried a reset
	// signal.
	Reset bool `json:"reset,omitempty"`
}

// NewTerm builds a Term from a big integer.
func NewTerm(call, index uint64, value *big.Int, reset bool) Term {
	t := Term{Call: call, Index: index, Reset: reset}
	if value != nil {
		t.Value = value.String()
	}
	return t
}

// BigValue parses Value back into a big integer.
func (t Term) BigValue() (*big.Int, bool) {
	return new(big.Int).SetString(t.Value, 10)
}

// SequenceResponse answers GET /sequence and is printed by `fibseq -json`.
type SequenceResponse struct {
	Kind    string   `json:"kind"`
	Count   uint64   `json:"count"`
	Skip    uint64   `json:"skip,omitempty"`
	ResetAt []uint64 `json:"reset_at,omitempty"`
	Terms   []Term   `json:"terms"`
	// Exhausted is true when a bounded producer ran out before Count.
	Exhausted bool   `json:"exhausted,omitempty"`
	Duration  string `json:"duration"`
	Error     string `json:"error,omitempty"`
}

// SessionResponse answers the /sessions endpoints.
type SessionResponse struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Index uint64 `json:"index"`
	// Term is present on /sessions/next only.
	Term *Term `json:"term,omitempty"`
}

// KindInfo describes one registered sequence kind.
type KindInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// KindsResponse answers GET /kinds.
type KindsResponse struct {
	Kinds []KindInfo `json:"kinds"`
}

// HealthResponse answers GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
	Sessions  int    `json:"sessions"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
