package cli

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/fibseq/internal/orchestration"
	"github.com/agbru/fibseq/internal/testutil"
)

// MockSpinner records calls instead of drawing to a terminal.
type MockSpinner struct {
	mu       sync.Mutex
	started  bool
	stopped  bool
	suffixes []string
}

func (m *MockSpinner) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = true
}

func (m *MockSpinner) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

func (m *MockSpinner) UpdateSuffix(suffix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suffixes = append(m.suffixes, suffix)
}

func TestFormatExecutionDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Microsecond, "500µs"},
		{15 * time.Millisecond, "15ms"},
		{2500 * time.Millisecond, "2.5s"},
	}
	for _, tt := range tests {
		if got := FormatExecutionDuration(tt.d); got != tt.want {
			t.Errorf("FormatExecutionDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatNumberString(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":         "",
		"7":        "7",
		"123":      "123",
		"1234":     "1,234",
		"1234567":  "1,234,567",
		"-987654":  "-987,654",
		"10000000": "10,000,000",
	}
	for in, want := range tests {
		if got := formatNumberString(in); got != want {
			t.Errorf("formatNumberString(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestProgressBar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		progress float64
		want     string
	}{
		{0, "░░░░░░░░░░"},
		{0.5, "█████░░░░░"},
		{1, "██████████"},
		{1.7, "██████████"},
		{-1, "░░░░░░░░░░"},
	}
	for _, tt := range tests {
		if got := progressBar(tt.progress, 10); got != tt.want {
			t.Errorf("progressBar(%v) = %q, want %q", tt.progress, got, tt.want)
		}
	}
}

func TestProgressState(t *testing.T) {
	t.Parallel()

	ps := NewProgressState(4)
	ps.Update(0, 1.0)
	ps.Update(1, 0.5)
	ps.Update(9, 1.0)
	ps.Update(-1, 1.0)
	if got := ps.CalculateAverage(); got != 0.375 {
		t.Errorf("CalculateAverage() = %v, want 0.375", got)
	}
	if got := NewProgressState(0).CalculateAverage(); got != 0 {
		t.Errorf("empty CalculateAverage() = %v", got)
	}
}

// DisplayProgress swaps the package-level spinner constructor, so these
// tests do not run in parallel.
func TestDisplayProgress(t *testing.T) {
	mock := &MockSpinner{}
	orig := newSpinner
	newSpinner = func(...spinner.Option) Spinner { return mock }
	defer func() { newSpinner = orig }()

	var buf bytes.Buffer
	ch := make(chan orchestration.ProgressUpdate, 4)
	var wg sync.WaitGroup
	wg.Add(1)
	go DisplayProgress(&wg, ch, 2, &buf)

	ch <- orchestration.ProgressUpdate{Slot: 0, Value: 0.5}
	ch <- orchestration.ProgressUpdate{Slot: 1, Value: 1.0}
	close(ch)
	wg.Wait()

	if !mock.started || !mock.stopped {
		t.Errorf("spinner started=%v stopped=%v", mock.started, mock.stopped)
	}
	out := testutil.StripAnsiCodes(buf.String())
	if !strings.Contains(out, "Avg progress: 100.00%") || !strings.Contains(out, "ETA: < 1s") {
		t.Errorf("final line missing: %q", out)
	}
}

func TestDisplayProgress_NoSlots(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ch := make(chan orchestration.ProgressUpdate, 2)
	ch <- orchestration.ProgressUpdate{Value: 1}
	close(ch)

	var wg sync.WaitGroup
	wg.Add(1)
	DisplayProgress(&wg, ch, 0, &buf)
	if buf.Len() != 0 {
		t.Errorf("output with no slots: %q", buf.String())
	}
}
