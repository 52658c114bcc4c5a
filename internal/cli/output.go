package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"

	"github.com/agbru/fibseq/internal/orchestration"
	"github.com/agbru/fibseq/pkg/models"
)

// OutputConfig controls how terms are rendered.
type OutputConfig struct {
	// HexOutput renders values in hexadecimal with a 0x prefix.
	HexOutput bool
	// Quiet prints bare values, one per line, for scripting.
	Quiet bool
	// Verbose disables truncation of long values.
	Verbose bool
}

// FormatValue renders v in base 10 (or base 16 with hex), shortening values
// longer than TruncationLimit digits unless verbose is set.
func FormatValue(v *big.Int, hex, verbose bool) string {
	if v == nil {
		return "<nil>"
	}
	prefix := ""
	s := v.String()
	if hex {
		prefix = "0x"
		s = v.Text(16)
	}
	if !verbose && len(s) > TruncationLimit {
		return fmt.Sprintf("%s%s...%s", prefix, s[:DisplayEdges], s[len(s)-DisplayEdges:])
	}
	return prefix + s
}

// FormatTerm renders one term as "S(index) = value", marking terms whose
// call carried a reset signal.
func FormatTerm(term orchestration.Term, cfg OutputConfig) string {
	value := FormatValue(term.Value, cfg.HexOutput, cfg.Verbose)
	if cfg.Quiet {
		return value
	}
	line := fmt.Sprintf("%s#%-4d%s S(%s%d%s) = %s%s%s",
		ColorMuted(), term.Call, ColorReset(),
		ColorBlue(), term.Index, ColorReset(),
		ColorValue(), value, ColorReset())
	if term.Reset {
		line += fmt.Sprintf("  %s<- reset%s", ColorMarker(), ColorReset())
	}
	return line
}

// NewTermSink returns an orchestration.Sink that prints each term to out as
// soon as it is produced. A write failure stops the run.
func NewTermSink(out io.Writer, cfg OutputConfig) orchestration.Sink {
	return func(term orchestration.Term) error {
		_, err := fmt.Fprintln(out, FormatTerm(term, cfg))
		return err
	}
}

// DisplayTerms prints terms one per line.
func DisplayTerms(out io.Writer, terms []orchestration.Term, cfg OutputConfig) {
	for _, term := range terms {
		fmt.Fprintln(out, FormatTerm(term, cfg))
	}
}

// DisplayTruncationHint tells the user how to see the full values when at
// least one of them was shortened.
func DisplayTruncationHint(out io.Writer, terms []orchestration.Term, cfg OutputConfig) {
	if cfg.Verbose || cfg.Quiet {
		return
	}
	for _, term := range terms {
		if term.Value != nil && len(FormatValue(term.Value, cfg.HexOutput, true)) > TruncationLimit {
			fmt.Fprintf(out, "%s(Tip: use the %s-v%s%s option to display the full values)%s\n",
				ColorMuted(), ColorYellow(), ColorReset(), ColorMuted(), ColorReset())
			return
		}
	}
}

// ToResponse converts a Drive result into the JSON payload shared with the
// HTTP API.
func ToResponse(res orchestration.Result, plan orchestration.Plan) models.SequenceResponse {
	resp := models.SequenceResponse{
		Kind:      res.Name,
		Count:     plan.Count,
		Skip:      plan.Skip,
		ResetAt:   plan.ResetAt,
		Terms:     make([]models.Term, len(res.Terms)),
		Exhausted: res.Exhausted,
		Duration:  res.Duration.String(),
	}
	for i, t := range res.Terms {
		resp.Terms[i] = models.NewTerm(t.Call, t.Index, t.Value, t.Reset)
	}
	if res.Err != nil {
		resp.Error = res.Err.Error()
	}
	return resp
}

// WriteJSON encodes one response per result as an indented JSON array.
func WriteJSON(out io.Writer, results []orchestration.Result, plan orchestration.Plan) error {
	responses := make([]models.SequenceResponse, len(results))
	for i, res := range results {
		responses[i] = ToResponse(res, plan)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(responses)
}
