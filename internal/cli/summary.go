package cli

import (
	"fmt"
	"io"
	"math/big"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/agbru/fibseq/internal/config"
	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/orchestration"
	"github.com/agbru/fibseq/internal/ui"
)

// PrintExecutionConfig prints the run parameters before any term.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	plan := cfg.ToPlan()
	count := fmt.Sprintf("%d", plan.Count)
	if plan.Count == 0 {
		count = "all"
	}
	source := cfg.Kind
	switch {
	case len(cfg.Items) > 0:
		source = fmt.Sprintf("items (%d values)", len(cfg.Items))
	case cfg.HasSeed():
		source = fmt.Sprintf("fibonacci seeded with (%s, %s)", cfg.First, cfg.Second)
	}
	fmt.Fprintf(out, "Pulling %s%s%s terms of %s%s%s with a timeout of %s%s%s.\n",
		ColorBlue(), count, ColorReset(), ColorBold(), source, ColorReset(), ColorYellow(), cfg.Timeout, ColorReset())
	if len(plan.ResetAt) > 0 || plan.Skip > 0 {
		fmt.Fprintf(out, "Reset signals at calls %s%s%s, skipping %s%d%s terms first.\n",
			ColorMarker(), orchestration.FormatCalls(plan.ResetAt), ColorReset(), ColorBlue(), plan.Skip, ColorReset())
	}
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s.\n",
		ColorBlue(), runtime.NumCPU(), ColorReset(), ColorBlue(), runtime.Version(), ColorReset())
}

func durationString(d time.Duration) string {
	if d == 0 {
		return "< 1µs"
	}
	return FormatExecutionDuration(d)
}

// DisplayResult prints the footer of a single-sequence run: how many terms
// were produced and the size of the last one.
func DisplayResult(res orchestration.Result, out io.Writer) {
	fmt.Fprintf(out, "\n%s--- Run summary ---%s\n", ColorBold(), ColorReset())
	fmt.Fprintf(out, "Terms produced : %s%s%s\n", ColorBlue(), formatNumberString(fmt.Sprintf("%d", res.Produced)), ColorReset())
	fmt.Fprintf(out, "Reset signals  : %s%d%s\n", ColorMarker(), res.Resets, ColorReset())
	fmt.Fprintf(out, "Duration       : %s%s%s\n", ColorGreen(), durationString(res.Duration), ColorReset())
	if res.Exhausted {
		fmt.Fprintf(out, "Producer       : %sexhausted%s\n", ColorYellow(), ColorReset())
	}
	if res.Last == nil {
		return
	}
	digits := len(new(big.Int).Abs(res.Last).String())
	fmt.Fprintf(out, "Last term size : %s%s%s bits, %s%s%s digits\n",
		ColorBlue(), formatNumberString(fmt.Sprintf("%d", res.Last.BitLen())), ColorReset(),
		ColorBlue(), formatNumberString(fmt.Sprintf("%d", digits)), ColorReset())
	if digits > 6 {
		f := new(big.Float).SetInt(res.Last)
		fmt.Fprintf(out, "Scientific     : %s%.6e%s\n", ColorValue(), f, ColorReset())
	}
}

// AnalyzeResults prints one table row per sequence of a multi-kind run and
// returns the process exit code: success if every run succeeded, otherwise
// the code of the first failure.
func AnalyzeResults(results []orchestration.Result, cfg OutputConfig, out io.Writer) int {
	var firstError error
	successCount := 0

	fmt.Fprintf(out, "\n--- Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "%sKind%s\t%sTerms%s\t%sResets%s\t%sLast%s\t%sDuration%s\t%sStatus%s\n",
		ColorBold(), ColorReset(), ColorBold(), ColorReset(), ColorBold(), ColorReset(),
		ColorBold(), ColorReset(), ColorBold(), ColorReset(), ColorBold(), ColorReset())

	for _, res := range results {
		var status string
		if res.Err != nil {
			status = fmt.Sprintf("%sFailure (%v)%s", ColorRed(), res.Err, ColorReset())
			if firstError == nil {
				firstError = res.Err
			}
		} else {
			status = fmt.Sprintf("%sSuccess%s", ColorGreen(), ColorReset())
			successCount++
		}
		last := "-"
		if res.Last != nil {
			last = FormatValue(res.Last, cfg.HexOutput, false)
			if !cfg.Verbose && len(last) > 2*DisplayEdges {
				last = last[:DisplayEdges] + "..."
			}
		}
		fmt.Fprintf(tw, "%s%s%s\t%d\t%d\t%s%s%s\t%s%s%s\t%s\n",
			ColorBlue(), res.Name, ColorReset(),
			res.Produced, res.Resets,
			ColorValue(), last, ColorReset(),
			ColorYellow(), durationString(res.Duration), ColorReset(),
			status)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(out, "Warning: failed to flush tabwriter: %v\n", err)
	}

	if firstError != nil {
		if successCount == 0 {
			fmt.Fprintf(out, "\nGlobal Status: Failure. No sequence could complete the run.\n")
		} else {
			fmt.Fprintf(out, "\nGlobal Status: Partial failure. %d of %d sequences completed.\n", successCount, len(results))
		}
		return apperrors.HandleRunError(firstError, 0, out, ui.Palette{})
	}

	fmt.Fprintf(out, "\nGlobal Status: Success. %d sequences completed.\n", successCount)
	return apperrors.ExitSuccess
}
