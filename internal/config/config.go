// Package config provides the configuration management for the fibseq
// application. It defines the configuration structure, parses command-line
// flags with environment overrides, and validates the result.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math/big"
	"slices"
	"strings"
	"time"

	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/orchestration"
	"github.com/agbru/fibseq/internal/sequence"
)

const (
	// EnvPrefix is the prefix for all environment variables read by fibseq.
	EnvPrefix = "FIBSEQ_"
)

// Default configuration values.
const (
	DefaultKind    = sequence.KindFibonacci
	DefaultCount   = 100
	DefaultTimeout = 1 * time.Minute
	DefaultPort    = "8080"

	DefaultMaxCount    = 10_000
	DefaultMaxSkip     = 10_000_000
	DefaultMaxSessions = 1_024
	DefaultSessionTTL  = 15 * time.Minute
	DefaultRateLimit   = 60
)

// SkipLimit is the largest skip the configuration allows. Fast skips still
// materialize S(n), so an unbounded skip exhausts memory before any timeout
// fires.
func (c AppConfig) SkipLimit() uint64 {
	if c.MaxSkip == 0 {
		return DefaultMaxSkip
	}
	return c.MaxSkip
}

// KindAll runs every registered kind side by side.
const KindAll = "all"

var validShells = []string{"bash", "zsh", "fish"}

// AppConfig aggregates the parsed command-line configuration.
type AppConfig struct {
	// Kind is the sequence to drive, or KindAll.
	Kind string
	// Count is the number of values to pull. Zero drains a bounded producer.
	Count uint64
	// ResetAt lists the call indices that carry a reset signal.
	ResetAt []uint64
	// Skip drops this many values before the first pull.
	Skip uint64
	// First and Second override the Fibonacci seed when both are set.
	First  string
	Second string
	// Items, when set, replaces the sequence with a bounded producer over
	// these values.
	Items []*big.Int

	Timeout     time.Duration
	JSONOutput  bool
	HexOutput   bool
	Verbose     bool
	Quiet       bool
	NoColor     bool
	Verify      bool
	Interactive bool
	// Completion names a shell to print a completion script for.
	Completion string

	ServerMode  bool
	Port        string
	MaxCount    uint64
	MaxSkip     uint64
	MaxSessions int
	SessionTTL  time.Duration
	// RateLimit is the number of requests per minute allowed per client.
	RateLimit int

	resetAtRaw string
	itemsRaw   string
}

// ToPlan converts the configuration into a driving plan.
func (c AppConfig) ToPlan() orchestration.Plan {
	return orchestration.Plan{Count: c.Count, ResetAt: c.ResetAt, Skip: c.Skip}
}

// HasSeed reports whether a custom seed was given.
func (c AppConfig) HasSeed() bool {
	return c.First != "" || c.Second != ""
}

// Seed parses the custom seed vector.
func (c AppConfig) Seed() (sequence.State, error) {
	return sequence.ParseState(c.First, c.Second)
}

// Kinds expands Kind into the list of kinds to run.
func (c AppConfig) Kinds(available []string) []string {
	if c.Kind == KindAll {
		return available
	}
	return []string{c.Kind}
}

// Validate checks the semantic consistency of the configuration.
//
// Returns:
//   - error: A ConfigError describing the first problem found, or nil.
func (c AppConfig) Validate(availableKinds []string) error {
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout value must be strictly positive")
	}
	if c.Completion != "" && !slices.Contains(validShells, c.Completion) {
		return apperrors.NewConfigError("unsupported shell for completion: '%s'. Valid shells are: %s", c.Completion, strings.Join(validShells, ", "))
	}
	if len(c.Items) > 0 {
		return c.validateItems()
	}
	if c.Kind != KindAll && !slices.Contains(availableKinds, c.Kind) {
		return apperrors.NewConfigError("unrecognized kind: '%s'. Valid kinds are: 'all' or [%s]", c.Kind, strings.Join(availableKinds, ", "))
	}
	if c.Skip > c.SkipLimit() {
		return apperrors.NewConfigError("skip %d exceeds the limit of %d (see -max-skip)", c.Skip, c.SkipLimit())
	}
	if c.Count == 0 && !c.ServerMode && !c.Interactive {
		return apperrors.NewConfigError("count must be strictly positive for an infinite sequence")
	}
	if c.HasSeed() {
		if c.Kind != sequence.KindFibonacci {
			return apperrors.NewConfigError("-first/-second only apply to the fibonacci kind, got '%s'", c.Kind)
		}
		if _, err := c.Seed(); err != nil {
			return apperrors.NewConfigError("invalid seed: %v", err)
		}
	}
	if c.ServerMode {
		if c.MaxCount == 0 {
			return apperrors.NewConfigError("max-count must be strictly positive")
		}
		if c.MaxSessions <= 0 {
			return apperrors.NewConfigError("max-sessions must be strictly positive")
		}
		if c.SessionTTL <= 0 {
			return apperrors.NewConfigError("session-ttl must be strictly positive")
		}
	}
	return nil
}

func (c AppConfig) validateItems() error {
	switch {
	case c.Kind != DefaultKind:
		return apperrors.NewConfigError("-items cannot be combined with -kind")
	case c.HasSeed():
		return apperrors.NewConfigError("-items cannot be combined with -first/-second")
	case len(c.ResetAt) > 0:
		return apperrors.NewConfigError("-items ignores reset signals; drop -reset-at")
	case c.Skip > 0:
		return apperrors.NewConfigError("-items cannot be combined with -skip")
	case c.Verify:
		return apperrors.NewConfigError("-items cannot be combined with -verify")
	}
	return nil
}

// parseItems parses a comma-separated list of base-10 integers.
func parseItems(s string) ([]*big.Int, error) {
	var items []*big.Int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, ok := new(big.Int).SetString(part, 10)
		if !ok {
			return nil, fmt.Errorf("invalid item %q", part)
		}
		items = append(items, v)
	}
	return items, nil
}

// ParseConfig parses the command-line arguments into an AppConfig, applies
// FIBSEQ_ environment overrides for flags left unset, and validates the
// result.
//
// Parameters:
//   - programName: The name of the program, used in the usage message.
//   - args: The command-line arguments (typically os.Args[1:]).
//   - errorWriter: Where parsing errors and usage information are printed.
//   - availableKinds: The registered sequence kinds.
//
// Returns:
//   - AppConfig: The populated configuration struct.
//   - error: An error if parsing or validation fails.
func ParseConfig(programName string, args []string, errorWriter io.Writer, availableKinds []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	kindHelp := fmt.Sprintf("Sequence to drive: 'all' or one of [%s].", strings.Join(availableKinds, ", "))

	config := AppConfig{}
	fs.StringVar(&config.Kind, "kind", DefaultKind, kindHelp)
	fs.Uint64Var(&config.Count, "count", DefaultCount, "Number of values to pull (0 drains -items).")
	fs.StringVar(&config.resetAtRaw, "reset-at", "", "Comma-separated call indices that send a reset signal.")
	fs.Uint64Var(&config.Skip, "skip", 0, "Drop this many values before pulling.")
	fs.StringVar(&config.First, "first", "", "Custom first seed term (fibonacci only).")
	fs.StringVar(&config.Second, "second", "", "Custom second seed term (fibonacci only).")
	fs.StringVar(&config.itemsRaw, "items", "", "Comma-separated values for a bounded producer.")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum execution time.")
	fs.BoolVar(&config.JSONOutput, "json", false, "Output results in JSON format.")
	fs.BoolVar(&config.HexOutput, "hex", false, "Display values in hexadecimal.")
	fs.BoolVar(&config.Verbose, "v", false, "Display large values in full and log driver events.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Quiet mode - bare values only, for scripts.")
	fs.BoolVar(&config.Quiet, "q", false, "Quiet mode (shorthand).")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output (also respects NO_COLOR env var).")
	fs.BoolVar(&config.Verify, "verify", false, "Replay each run on a second instance and compare.")
	fs.BoolVar(&config.Interactive, "interactive", false, "Start in interactive REPL mode.")
	fs.StringVar(&config.Completion, "completion", "", "Generate shell completion script (bash, zsh, fish).")

	fs.BoolVar(&config.ServerMode, "server", false, "Start in HTTP server mode.")
	fs.StringVar(&config.Port, "port", DefaultPort, "Port to listen on in server mode.")
	fs.Uint64Var(&config.MaxCount, "max-count", DefaultMaxCount, "Largest count a single API request may ask for.")
	fs.Uint64Var(&config.MaxSkip, "max-skip", DefaultMaxSkip, "Largest skip accepted from -skip, the REPL and API requests.")
	fs.IntVar(&config.MaxSessions, "max-sessions", DefaultMaxSessions, "Maximum number of open API sessions.")
	fs.DurationVar(&config.SessionTTL, "session-ttl", DefaultSessionTTL, "Idle time after which an API session expires.")
	fs.IntVar(&config.RateLimit, "rate-limit", DefaultRateLimit, "Requests per minute allowed per client.")

	setCustomUsage(fs)

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}

	applyEnvOverrides(&config, fs)

	config.Kind = strings.ToLower(strings.TrimSpace(config.Kind))
	config.Completion = strings.ToLower(config.Completion)

	var err error
	if config.ResetAt, err = orchestration.ParseCalls(config.resetAtRaw); err != nil {
		return AppConfig{}, reportInvalid(errorWriter, fs, apperrors.NewConfigError("invalid -reset-at: %v", err))
	}
	if config.Items, err = parseItems(config.itemsRaw); err != nil {
		return AppConfig{}, reportInvalid(errorWriter, fs, apperrors.NewConfigError("invalid -items: %v", err))
	}
	if err := config.Validate(availableKinds); err != nil {
		return AppConfig{}, reportInvalid(errorWriter, fs, err)
	}
	return config, nil
}

// ErrInvalidConfig is returned by ParseConfig when validation fails. The
// underlying ConfigError is joined to it.
var ErrInvalidConfig = errors.New("invalid configuration")

func reportInvalid(w io.Writer, fs *flag.FlagSet, err error) error {
	fmt.Fprintln(w, "Configuration error:", err)
	fs.Usage()
	return errors.Join(ErrInvalidConfig, err)
}
