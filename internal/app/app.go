package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/big"
	"sync"

	"github.com/agbru/fibseq/internal/cli"
	"github.com/agbru/fibseq/internal/config"
	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/iterator"
	"github.com/agbru/fibseq/internal/logging"
	"github.com/agbru/fibseq/internal/orchestration"
	"github.com/agbru/fibseq/internal/sequence"
	"github.com/agbru/fibseq/internal/server"
	"github.com/agbru/fibseq/internal/ui"
)

// itemsName labels runs over the -items list.
const itemsName = "items"

// debugEvery is the term interval at which -v logs progress.
const debugEvery = 1000

// Application is one fibseq invocation: a parsed configuration plus the
// sequence registry it runs against.
type Application struct {
	// Config holds the parsed application configuration.
	Config config.AppConfig
	// Factory creates the sequences named by -kind.
	Factory sequence.Factory
	// ErrWriter receives diagnostics and logs (typically os.Stderr).
	ErrWriter io.Writer
	// In feeds the interactive REPL. Nil means os.Stdin.
	In io.Reader
}

// New parses args (program name first) into an Application.
func New(args []string, errWriter io.Writer) (*Application, error) {
	factory := sequence.GlobalFactory()

	programName := "fibseq"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, factory.List())
	if err != nil {
		return nil, err
	}

	return &Application{
		Config:    cfg,
		Factory:   factory,
		ErrWriter: errWriter,
	}, nil
}

// Run dispatches to the configured mode and returns the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	ui.InitTheme(a.Config.NoColor)

	if a.Config.ServerMode {
		return a.runServer()
	}

	if a.Config.Interactive {
		return a.runREPL(out)
	}

	return a.runSequence(ctx, out)
}

func (a *Application) logger(component string) logging.Logger {
	return logging.NewConsoleLogger(a.ErrWriter, component, a.Config.Verbose)
}

func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion, a.Factory.List()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

func (a *Application) runServer() int {
	srv := server.NewServer(a.factory(), a.Config, server.WithLogger(a.logger("server")))
	if err := srv.Start(); err != nil {
		fmt.Fprintf(a.ErrWriter, "Server error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

func (a *Application) runREPL(out io.Writer) int {
	repl := cli.NewREPL(a.factory(), cli.REPLConfig{
		DefaultKind: a.Config.Kind,
		Timeout:     a.Config.Timeout,
		HexOutput:   a.Config.HexOutput,
		Verbose:     a.Config.Verbose,
		MaxSkip:     a.Config.SkipLimit(),
	})
	if a.In != nil {
		repl.SetInput(a.In)
	}
	repl.SetOutput(out)
	repl.Start()
	return apperrors.ExitSuccess
}

// factory returns the registry to run against. A custom -first/-second
// seed replaces the fibonacci kind in a private copy so that every code
// path, -verify included, sees the seeded sequence.
func (a *Application) factory() sequence.Factory {
	if !a.Config.HasSeed() {
		return a.Factory
	}
	state, err := a.Config.Seed()
	if err != nil {
		return a.Factory
	}
	seeded := sequence.NewDefaultFactory()
	for _, name := range a.Factory.List() {
		if name == sequence.KindFibonacci {
			continue
		}
		_ = seeded.Register(name, a.Factory.Describe(name), func() sequence.Source {
			src, _ := a.Factory.Create(name)
			return src
		})
	}
	_ = seeded.Register(sequence.KindFibonacci,
		fmt.Sprintf("Fibonacci recurrence seeded with %s", state),
		func() sequence.Source { return sequence.New(state.Clone()) })
	return seeded
}

func (a *Application) outputConfig() cli.OutputConfig {
	return cli.OutputConfig{
		HexOutput: a.Config.HexOutput,
		Quiet:     a.Config.Quiet,
		Verbose:   a.Config.Verbose,
	}
}

func (a *Application) observers() []orchestration.Observer {
	if !a.Config.Verbose {
		return nil
	}
	return []orchestration.Observer{orchestration.NewLoggingObserver(a.logger("driver"), debugEvery)}
}

// runSequence is the default mode: drive the plan once and print the terms.
func (a *Application) runSequence(ctx context.Context, out io.Writer) int {
	ctx, lifecycle := SetupLifecycle(ctx, a.Config.Timeout)
	defer lifecycle.Cleanup()

	factory := a.factory()
	plan := a.Config.ToPlan()

	if !a.Config.JSONOutput && !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, out)
		fmt.Fprintln(out)
	}

	if a.Config.Verify {
		return a.runVerify(ctx, factory, plan, out)
	}

	if len(a.Config.Items) > 0 {
		src := iterator.Passive[*big.Int, any](iterator.FromSlice(a.Config.Items...))
		return a.runSingle(ctx, itemsName, src, plan, out)
	}

	kinds := a.Config.Kinds(factory.List())
	if len(kinds) == 1 {
		src, err := factory.Create(kinds[0])
		if err != nil {
			return apperrors.HandleRunError(apperrors.NewSequenceError(kinds[0], err), 0, out, ui.Palette{})
		}
		return a.runSingle(ctx, kinds[0], src, plan, out)
	}
	return a.runAll(ctx, factory, kinds, plan, out)
}

// runSingle streams one sequence to out as it is produced. With -json the
// terms are collected and encoded at the end instead.
func (a *Application) runSingle(ctx context.Context, name string, src iterator.Resumable[*big.Int, any], plan orchestration.Plan, out io.Writer) int {
	outCfg := a.outputConfig()

	if a.Config.JSONOutput {
		res := orchestration.Drive(ctx, name, src, plan, nil, a.observers()...)
		return a.printJSON([]orchestration.Result{res}, plan, out)
	}

	res := orchestration.Drive(ctx, name, src, plan, cli.NewTermSink(out, outCfg), a.observers()...)
	if !a.Config.Quiet {
		if res.Last != nil {
			cli.DisplayTruncationHint(out, []orchestration.Term{{Value: res.Last}}, outCfg)
		}
		cli.DisplayResult(res, out)
	}
	if res.Err != nil {
		return apperrors.HandleRunError(res.Err, res.Duration, out, ui.Palette{})
	}
	return apperrors.ExitSuccess
}

// runAll drives every kind concurrently behind a progress bar, then prints
// each kind's terms followed by the summary table.
func (a *Application) runAll(ctx context.Context, factory sequence.Factory, kinds []string, plan orchestration.Plan, out io.Writer) int {
	progressOut := out
	if a.Config.Quiet || a.Config.JSONOutput {
		progressOut = io.Discard
	}

	progressChan := make(chan orchestration.ProgressUpdate, len(kinds)*8)
	var wg sync.WaitGroup
	wg.Add(1)
	go cli.DisplayProgress(&wg, progressChan, len(kinds), progressOut)

	observers := append(a.observers(), orchestration.NewChannelObserver(progressChan))
	results := orchestration.DriveAll(ctx, factory, kinds, plan, observers...)
	close(progressChan)
	wg.Wait()

	if a.Config.JSONOutput {
		return a.printJSON(results, plan, out)
	}

	outCfg := a.outputConfig()
	for _, res := range results {
		if !a.Config.Quiet {
			fmt.Fprintf(out, "\n%s--- %s ---%s\n", cli.ColorBold(), res.Name, cli.ColorReset())
		}
		cli.DisplayTerms(out, res.Terms, outCfg)
	}
	if a.Config.Quiet {
		for _, res := range results {
			if res.Err != nil {
				return apperrors.ExitCode(res.Err)
			}
		}
		return apperrors.ExitSuccess
	}
	for _, res := range results {
		cli.DisplayTruncationHint(out, res.Terms, outCfg)
	}
	return cli.AnalyzeResults(results, outCfg, out)
}

// runVerify replays the plan twice per kind and compares the runs.
func (a *Application) runVerify(ctx context.Context, factory sequence.Factory, plan orchestration.Plan, out io.Writer) int {
	for _, kind := range a.Config.Kinds(factory.List()) {
		if err := orchestration.VerifyDeterminism(ctx, factory, kind, plan); err != nil {
			return apperrors.HandleRunError(err, 0, out, ui.Palette{})
		}
		if !a.Config.Quiet {
			fmt.Fprintf(out, "%s%-10s%s replay matches (%s)\n", cli.ColorGreen(), kind, cli.ColorReset(), plan)
		}
	}
	return apperrors.ExitSuccess
}

func (a *Application) printJSON(results []orchestration.Result, plan orchestration.Plan, out io.Writer) int {
	if err := cli.WriteJSON(out, results, plan); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error encoding JSON: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	for _, res := range results {
		if res.Err != nil {
			return apperrors.ExitCode(res.Err)
		}
	}
	return apperrors.ExitSuccess
}

// IsHelpError reports whether err comes from -h or --help.
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

// Main is the body of the fibseq binary: it handles --version, builds the
// Application and runs it, returning the exit code.
func Main(ctx context.Context, args []string, out, errOut io.Writer) int {
	if len(args) > 1 && HasVersionFlag(args[1:]) {
		PrintVersion(out)
		return apperrors.ExitSuccess
	}

	application, err := New(args, errOut)
	if err != nil {
		if IsHelpError(err) {
			return apperrors.ExitSuccess
		}
		return apperrors.ExitErrorConfig
	}
	return application.Run(ctx, out)
}
