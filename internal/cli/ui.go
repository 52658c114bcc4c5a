// Package cli renders sequence runs for the terminal: term lines, JSON,
// the multi-kind summary table, a spinner with a progress bar, the
// interactive REPL and shell completion scripts.
package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/fibseq/internal/orchestration"
	"github.com/agbru/fibseq/internal/ui"
)

// FormatExecutionDuration shows microseconds below a millisecond,
// milliseconds below a second, and the default representation otherwise.
func FormatExecutionDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	} else if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

const (
	// TruncationLimit is the digit count above which a value is shortened
	// unless -v is given.
	TruncationLimit = 100
	// DisplayEdges is the number of digits kept at each end of a truncated
	// value.
	DisplayEdges = 25
	// ProgressRefreshRate is the spinner refresh period.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the width in characters of the progress bar.
	ProgressBarWidth = 40
)

// Color helpers read the current theme on every call so that SetTheme
// takes effect immediately.

func ColorReset() string  { return ui.GetCurrentTheme().Reset }
func ColorRed() string    { return ui.GetCurrentTheme().Error }
func ColorGreen() string  { return ui.GetCurrentTheme().Success }
func ColorYellow() string { return ui.GetCurrentTheme().Warning }
func ColorBlue() string   { return ui.GetCurrentTheme().Index }
func ColorValue() string  { return ui.GetCurrentTheme().Value }
func ColorMarker() string { return ui.GetCurrentTheme().Marker }
func ColorMuted() string  { return ui.GetCurrentTheme().Muted }
func ColorBold() string   { return ui.GetCurrentTheme().Bold }

// Spinner abstracts the terminal spinner so DisplayProgress can be tested
// without a terminal.
type Spinner interface {
	Start()
	Stop()
	// UpdateSuffix sets the text displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts briandowns/spinner to Spinner.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// ProgressState holds the progress of every concurrently driven sequence
// and averages it for a single bar.
type ProgressState struct {
	progresses []float64
	numSlots   int
}

// NewProgressState creates a ProgressState for numSlots sequences.
func NewProgressState(numSlots int) *ProgressState {
	return &ProgressState{
		progresses: make([]float64, numSlots),
		numSlots:   numSlots,
	}
}

// Update records the progress of one slot. Out-of-range slots are ignored.
func (ps *ProgressState) Update(index int, value float64) {
	if index >= 0 && index < len(ps.progresses) {
		ps.progresses[index] = value
	}
}

// CalculateAverage returns the mean progress across all slots.
func (ps *ProgressState) CalculateAverage() float64 {
	if ps.numSlots == 0 {
		return 0.0
	}
	var total float64
	for _, p := range ps.progresses {
		total += p
	}
	return total / float64(ps.numSlots)
}

// progressBar renders progress (clamped to [0, 1]) as a bar of length runes.
func progressBar(progress float64, length int) string {
	if progress > 1.0 {
		progress = 1.0
	}
	if progress < 0.0 {
		progress = 0.0
	}
	count := int(progress * float64(length))
	var builder strings.Builder
	builder.Grow(length * 3)
	for i := 0; i < length; i++ {
		if i < count {
			builder.WriteRune('█')
		} else {
			builder.WriteRune('░')
		}
	}
	return builder.String()
}

// DisplayProgress shows a spinner and an averaged progress bar fed by
// orchestration.ChannelObserver until progressChan is closed, then prints a
// final 100% line. It must run in its own goroutine; wg.Done is called on
// return.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, numSlots int, out io.Writer) {
	defer wg.Done()
	if numSlots <= 0 {
		for range progressChan {
		}
		return
	}

	state := NewProgressWithETA(numSlots)
	s := newSpinner(spinner.WithWriter(out))
	s.Start()
	spinnerStopped := false
	defer func() {
		if !spinnerStopped {
			s.Stop()
		}
	}()

	label := "Progress"
	if numSlots > 1 {
		label = "Avg progress"
	}

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.Stop()
				spinnerStopped = true
				fmt.Fprintf(out, "%s: %s\n", label, FormatProgressBarWithETA(1.0, time.Nanosecond, ProgressBarWidth))
				return
			}
			state.UpdateWithETA(update.Slot, update.Value)
		case <-ticker.C:
			s.UpdateSuffix(fmt.Sprintf(" %s: %s", label,
				FormatProgressBarWithETA(state.CalculateAverage(), state.GetETA(), ProgressBarWidth)))
		}
	}
}

// formatNumberString inserts thousand separators into a decimal string.
func formatNumberString(s string) string {
	if len(s) == 0 {
		return ""
	}
	prefix := ""
	if s[0] == '-' {
		prefix = "-"
		s = s[1:]
	}
	n := len(s)
	if n <= 3 {
		return prefix + s
	}

	var builder strings.Builder
	builder.Grow(len(prefix) + n + (n-1)/3)
	builder.WriteString(prefix)

	firstGroupLen := n % 3
	if firstGroupLen == 0 {
		firstGroupLen = 3
	}
	builder.WriteString(s[:firstGroupLen])
	for i := firstGroupLen; i < n; i += 3 {
		builder.WriteByte(',')
		builder.WriteString(s[i : i+3])
	}
	return builder.String()
}
