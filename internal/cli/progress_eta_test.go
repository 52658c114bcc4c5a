package cli

import (
	"strings"
	"testing"
	"time"
)

func TestFormatETA(t *testing.T) {
	t.Parallel()

	tests := []struct {
		eta  time.Duration
		want string
	}{
		{0, "calculating..."},
		{-time.Second, "calculating..."},
		{500 * time.Millisecond, "< 1s"},
		{42 * time.Second, "42s"},
		{2 * time.Minute, "2m"},
		{2*time.Minute + 30*time.Second, "2m30s"},
		{time.Hour, "1h"},
		{time.Hour + 15*time.Minute, "1h15m"},
	}
	for _, tt := range tests {
		if got := FormatETA(tt.eta); got != tt.want {
			t.Errorf("FormatETA(%v) = %q, want %q", tt.eta, got, tt.want)
		}
	}
}

func TestFormatProgressBarWithETA(t *testing.T) {
	t.Parallel()

	got := FormatProgressBarWithETA(0.5, 42*time.Second, 4)
	if got != " 50.00% [██░░] ETA: 42s" {
		t.Errorf("FormatProgressBarWithETA() = %q", got)
	}
}

func TestProgressWithETA(t *testing.T) {
	t.Parallel()

	p := NewProgressWithETA(1)
	progress, eta := p.UpdateWithETA(0, 0.1)
	if progress != 0.1 || eta != 0 {
		t.Errorf("first update = %v, %v; want 0.1 with no estimate yet", progress, eta)
	}

	// Pretend the run started a second ago.
	p.startTime = time.Now().Add(-time.Second)
	p.lastUpdate = p.startTime
	_, eta = p.UpdateWithETA(0, 0.5)
	if eta <= 0 || eta > 24*time.Hour {
		t.Errorf("eta = %v, want a positive estimate", eta)
	}

	p.Update(0, 1.0)
	if got := p.GetETA(); got != 0 {
		t.Errorf("GetETA() at completion = %v", got)
	}
	if !strings.Contains(FormatProgressBarWithETA(1, 0, 10), "100.00%") {
		t.Error("complete bar does not show 100%")
	}
}
