package cli

import (
	"fmt"
	"time"
)

// ProgressWithETA adds a smoothed rate estimate to ProgressState.
type ProgressWithETA struct {
	*ProgressState
	startTime    time.Time
	lastUpdate   time.Time
	lastProgress float64
	// progressRate is progress per second, exponentially smoothed.
	progressRate float64
}

// NewProgressWithETA creates a tracker for numSlots sequences.
func NewProgressWithETA(numSlots int) *ProgressWithETA {
	now := time.Now()
	return &ProgressWithETA{
		ProgressState: NewProgressState(numSlots),
		startTime:     now,
		lastUpdate:    now,
	}
}

// UpdateWithETA records one slot's progress and returns the average
// progress and the estimated time remaining (0 while no estimate exists).
func (p *ProgressWithETA) UpdateWithETA(index int, value float64) (progress float64, eta time.Duration) {
	p.Update(index, value)
	progress = p.CalculateAverage()

	now := time.Now()
	elapsed := now.Sub(p.startTime)

	if elapsed < 100*time.Millisecond || progress <= 0.001 {
		p.lastUpdate = now
		p.lastProgress = progress
		return progress, 0
	}

	if sinceUpdate := now.Sub(p.lastUpdate).Seconds(); sinceUpdate > 0.05 {
		if delta := progress - p.lastProgress; delta > 0 {
			instant := delta / sinceUpdate
			if p.progressRate > 0 {
				p.progressRate = 0.7*p.progressRate + 0.3*instant
			} else {
				p.progressRate = progress / elapsed.Seconds()
			}
		}
		p.lastUpdate = now
		p.lastProgress = progress
	}

	return progress, p.GetETA()
}

// GetETA returns the current estimate without recording progress. It is
// capped at 24 hours.
func (p *ProgressWithETA) GetETA() time.Duration {
	progress := p.CalculateAverage()
	if p.progressRate <= 0 || progress >= 1.0 {
		return 0
	}

	eta := time.Duration((1.0 - progress) / p.progressRate * float64(time.Second))
	if eta > 24*time.Hour {
		eta = 24 * time.Hour
	}
	return eta
}

// FormatETA renders an estimate as "< 1s", "42s", "2m30s" or "1h15m".
func FormatETA(eta time.Duration) string {
	if eta <= 0 {
		return "calculating..."
	}
	if eta < time.Second {
		return "< 1s"
	}
	if eta < time.Minute {
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	}
	if eta < time.Hour {
		minutes := int(eta.Minutes())
		if seconds := int(eta.Seconds()) % 60; seconds > 0 {
			return fmt.Sprintf("%dm%ds", minutes, seconds)
		}
		return fmt.Sprintf("%dm", minutes)
	}

	hours := int(eta.Hours())
	if minutes := int(eta.Minutes()) % 60; minutes > 0 {
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	return fmt.Sprintf("%dh", hours)
}

// FormatProgressBarWithETA renders "45.00% [████░░░░] ETA: 2m30s".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	return fmt.Sprintf("%6.2f%% [%s] ETA: %s", progress*100, progressBar(progress, width), FormatETA(eta))
}
