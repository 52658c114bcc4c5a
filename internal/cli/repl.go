package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	appconfig "github.com/agbru/fibseq/internal/config"
	"github.com/agbru/fibseq/internal/iterator"
	"github.com/agbru/fibseq/internal/orchestration"
	"github.com/agbru/fibseq/internal/sequence"
)

// REPLConfig holds the settings of an interactive session.
type REPLConfig struct {
	// DefaultKind is the kind opened at start. Empty or "all" picks the
	// first registered kind.
	DefaultKind string
	// Timeout bounds each take and skip command.
	Timeout time.Duration
	// HexOutput displays values in hexadecimal.
	HexOutput bool
	// Verbose disables truncation of long values.
	Verbose bool
	// MaxSkip caps the skip command. Zero means config.DefaultMaxSkip.
	MaxSkip uint64
}

// REPL is an interactive session over one live sequence. Every pull goes
// through Resume so the user can attach a reset signal to any call.
type REPL struct {
	config  REPLConfig
	factory sequence.Factory
	kind    string
	src     sequence.Source
	// calls counts the pulls made on src since it was created.
	calls uint64
	// pending is the control value attached to the next pull.
	pending any
	in      io.Reader
	out     io.Writer
}

// NewREPL creates a REPL over the kinds registered in factory.
func NewREPL(factory sequence.Factory, config REPLConfig) *REPL {
	if config.Timeout <= 0 {
		config.Timeout = time.Minute
	}
	if config.MaxSkip == 0 {
		config.MaxSkip = appconfig.DefaultMaxSkip
	}
	r := &REPL{
		config:  config,
		factory: factory,
		in:      os.Stdin,
		out:     os.Stdout,
	}
	kind := config.DefaultKind
	if kind == "" || kind == "all" {
		if kinds := factory.List(); len(kinds) > 0 {
			kind = kinds[0]
		}
	}
	if src, err := factory.Create(kind); err == nil {
		r.kind, r.src = kind, src
	}
	return r
}

// SetInput sets the command source.
func (r *REPL) SetInput(in io.Reader) {
	r.in = in
}

// SetOutput sets the destination of all REPL output.
func (r *REPL) SetOutput(out io.Writer) {
	r.out = out
}

// Start reads and executes commands until exit, quit or EOF.
func (r *REPL) Start() {
	r.printBanner()
	r.printHelp()
	fmt.Fprintln(r.out)

	reader := bufio.NewReader(r.in)

	for {
		fmt.Fprint(r.out, ColorGreen()+"seq> "+ColorReset())

		input, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(r.out, "%sRead error: %v%s\n", ColorRed(), err, ColorReset())
			continue
		}

		if line := strings.TrimSpace(input); line != "" && !r.processCommand(line) {
			return
		}
		if err != nil {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return
		}
	}
}

func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "\n%s╔══════════════════════════════════════════════════════════╗%s\n", ColorBlue(), ColorReset())
	fmt.Fprintf(r.out, "%s║%s     %sfibseq - Interactive Mode%s                            %s║%s\n",
		ColorBlue(), ColorReset(), ColorBold(), ColorReset(), ColorBlue(), ColorReset())
	fmt.Fprintf(r.out, "%s╚══════════════════════════════════════════════════════════╝%s\n\n", ColorBlue(), ColorReset())
}

func (r *REPL) printHelp() {
	fmt.Fprintf(r.out, "%sAvailable commands:%s\n", ColorBold(), ColorReset())
	fmt.Fprintf(r.out, "  %snext [reset]%s     - Pull one term, optionally sending a reset signal\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %stake <n>%s         - Pull n terms\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %sskip <n>%s         - Drop n terms without printing them\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %sreset%s            - Restore the initial state now\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %sreseed <a> <b>%s   - Replace the state after the next pull\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %skind <name>%s      - Switch to a fresh sequence (%s)\n", ColorYellow(), ColorReset(), strings.Join(r.factory.List(), ", "))
	fmt.Fprintf(r.out, "  %slist%s             - List available kinds\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %shex%s              - Toggle hexadecimal display\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %sstatus%s           - Display the session state\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %shelp%s             - Display this help\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %sexit%s / %squit%s      - Exit interactive mode\n", ColorYellow(), ColorReset(), ColorYellow(), ColorReset())
}

// processCommand executes one command. It returns false when the REPL
// should exit.
func (r *REPL) processCommand(input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "next", "n":
		r.cmdNext(args)
	case "reset!":
		r.cmdNext([]string{"reset"})
	case "take", "t":
		r.cmdTake(args)
	case "skip", "s":
		r.cmdSkip(args)
	case "reset", "r":
		r.cmdReset()
	case "reseed":
		r.cmdReseed(args)
	case "kind", "k":
		r.cmdKind(args)
	case "list", "ls":
		r.cmdList()
	case "hex":
		r.cmdHex()
	case "status", "st":
		r.cmdStatus()
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", ColorGreen(), ColorReset())
		return false
	default:
		if n, err := strconv.ParseUint(cmd, 10, 64); err == nil {
			r.take(n)
		} else {
			fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", ColorRed(), cmd, ColorReset())
			fmt.Fprintf(r.out, "Type %shelp%s to see available commands.\n", ColorYellow(), ColorReset())
		}
	}

	return true
}

func (r *REPL) outputConfig() OutputConfig {
	return OutputConfig{HexOutput: r.config.HexOutput, Verbose: r.config.Verbose}
}

func (r *REPL) ready() bool {
	if r.src == nil {
		fmt.Fprintf(r.out, "%sNo sequence selected. Use kind <name>.%s\n", ColorRed(), ColorReset())
		return false
	}
	return true
}

// pull makes one Resume call carrying ctl, or the pending control value
// when ctl is nil. Either way the pending value is consumed.
func (r *REPL) pull(ctl any) (orchestration.Term, bool) {
	if ctl == nil {
		ctl = r.pending
	}
	r.pending = nil
	index := r.src.Index()
	v, ok := iterator.Unpack(r.src.Resume(ctl))
	if !ok {
		return orchestration.Term{}, false
	}
	term := orchestration.Term{Call: r.calls, Index: index, Value: v, Reset: sequence.IsReset(ctl)}
	r.calls++
	return term, true
}

func (r *REPL) cmdNext(args []string) {
	if !r.ready() {
		return
	}
	var ctl any
	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "reset", "r", "true":
			ctl = sequence.Reset
		default:
			fmt.Fprintf(r.out, "%sUsage: next [reset]%s\n", ColorRed(), ColorReset())
			return
		}
	}
	if ctl != nil && r.pending != nil {
		fmt.Fprintf(r.out, "%sPending state discarded: this pull carries the reset.%s\n", ColorYellow(), ColorReset())
	}
	term, ok := r.pull(ctl)
	if !ok {
		fmt.Fprintf(r.out, "%sSequence exhausted.%s\n", ColorYellow(), ColorReset())
		return
	}
	fmt.Fprintln(r.out, FormatTerm(term, r.outputConfig()))
}

func (r *REPL) parseCount(cmd string, args []string) (uint64, bool) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: %s <n>%s\n", ColorRed(), cmd, ColorReset())
		return 0, false
	}
	n, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(r.out, "%sInvalid value: %s%s\n", ColorRed(), args[0], ColorReset())
		return 0, false
	}
	return n, true
}

func (r *REPL) cmdTake(args []string) {
	if n, ok := r.parseCount("take", args); ok {
		r.take(n)
	}
}

// take pulls n terms. The first pull carries any pending control value.
func (r *REPL) take(n uint64) {
	if !r.ready() || n == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()

	start := time.Now()
	var produced uint64
	for produced < n {
		if err := ctx.Err(); err != nil {
			fmt.Fprintf(r.out, "%sError: %v%s\n", ColorRed(), err, ColorReset())
			break
		}
		term, ok := r.pull(nil)
		if !ok {
			fmt.Fprintf(r.out, "%sSequence exhausted.%s\n", ColorYellow(), ColorReset())
			break
		}
		fmt.Fprintln(r.out, FormatTerm(term, r.outputConfig()))
		produced++
	}
	if produced > 1 {
		fmt.Fprintf(r.out, "%s%d terms in %s%s\n", ColorMuted(), produced, FormatExecutionDuration(time.Since(start)), ColorReset())
	}
}

func (r *REPL) cmdSkip(args []string) {
	if !r.ready() {
		return
	}
	n, ok := r.parseCount("skip", args)
	if !ok {
		return
	}
	if n > r.config.MaxSkip {
		fmt.Fprintf(r.out, "%sSkip too large: %d (maximum %d)%s\n", ColorRed(), n, r.config.MaxSkip, ColorReset())
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()

	start := time.Now()
	if err := r.src.Skip(ctx, n); err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ColorRed(), err, ColorReset())
		return
	}
	fmt.Fprintf(r.out, "Skipped %s%d%s terms in %s; next index is %s%d%s\n",
		ColorBlue(), n, ColorReset(), FormatExecutionDuration(time.Since(start)),
		ColorBlue(), r.src.Index(), ColorReset())
}

func (r *REPL) cmdReset() {
	if !r.ready() {
		return
	}
	r.src.Reset()
	r.pending = nil
	fmt.Fprintf(r.out, "%s restored to its initial state.\n", r.kind)
}

func (r *REPL) cmdReseed(args []string) {
	if !r.ready() {
		return
	}
	if len(args) != 2 {
		fmt.Fprintf(r.out, "%sUsage: reseed <a> <b>%s\n", ColorRed(), ColorReset())
		return
	}
	state, err := sequence.ParseState(args[0], args[1])
	if err != nil {
		fmt.Fprintf(r.out, "%sInvalid state: %v%s\n", ColorRed(), err, ColorReset())
		return
	}
	r.pending = sequence.Reseed{State: state}
	fmt.Fprintf(r.out, "State %s%s%s will apply after the next pull.\n", ColorValue(), state, ColorReset())
}

func (r *REPL) cmdKind(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: kind <name>%s\n", ColorRed(), ColorReset())
		fmt.Fprintf(r.out, "Available kinds: %s\n", strings.Join(r.factory.List(), ", "))
		return
	}

	name := strings.ToLower(args[0])
	src, err := r.factory.Create(name)
	if err != nil {
		fmt.Fprintf(r.out, "%sUnknown kind: %s%s\n", ColorRed(), name, ColorReset())
		fmt.Fprintf(r.out, "Available kinds: %s\n", strings.Join(r.factory.List(), ", "))
		return
	}

	r.kind, r.src, r.calls, r.pending = name, src, 0, nil
	fmt.Fprintf(r.out, "Kind changed to: %s%s%s\n", ColorGreen(), name, ColorReset())
}

func (r *REPL) cmdList() {
	fmt.Fprintf(r.out, "\n%sAvailable kinds:%s\n", ColorBold(), ColorReset())
	for _, name := range r.factory.List() {
		marker := "  "
		if name == r.kind {
			marker = ColorGreen() + "► " + ColorReset()
		}
		fmt.Fprintf(r.out, "%s%s%-10s%s - %s\n", marker, ColorYellow(), name, ColorReset(), r.factory.Describe(name))
	}
	fmt.Fprintln(r.out)
}

func (r *REPL) cmdHex() {
	r.config.HexOutput = !r.config.HexOutput
	status := "disabled"
	if r.config.HexOutput {
		status = "enabled"
	}
	fmt.Fprintf(r.out, "Hexadecimal display: %s%s%s\n", ColorGreen(), status, ColorReset())
}

func (r *REPL) cmdStatus() {
	fmt.Fprintf(r.out, "\n%sCurrent session:%s\n", ColorBold(), ColorReset())
	fmt.Fprintf(r.out, "  Kind:         %s%s%s\n", ColorBlue(), r.kind, ColorReset())
	if r.src != nil {
		fmt.Fprintf(r.out, "  Calls:        %s%d%s\n", ColorBlue(), r.calls, ColorReset())
		fmt.Fprintf(r.out, "  Next index:   %s%d%s\n", ColorBlue(), r.src.Index(), ColorReset())
	}
	if r.pending != nil {
		fmt.Fprintf(r.out, "  Pending:      %s%v%s\n", ColorMarker(), r.pending, ColorReset())
	}
	fmt.Fprintf(r.out, "  Timeout:      %s%s%s\n", ColorBlue(), r.config.Timeout, ColorReset())
	hexStatus := "no"
	if r.config.HexOutput {
		hexStatus = "yes"
	}
	fmt.Fprintf(r.out, "  Hexadecimal:  %s%s%s\n", ColorBlue(), hexStatus, ColorReset())
	fmt.Fprintln(r.out)
}
