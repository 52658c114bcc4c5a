// Package logging provides the structured logger shared by the sequence
// driver, the session store and the HTTP server. The zerolog backend is the
// default; a no-op logger is available for tests and quiet runs.
package logging

import (
	"fmt"
	"io"
	stdlog "log"
	"math/big"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is the logging interface used across the application.
type Logger interface {
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, err error, fields ...Field)
	Debug(msg string, fields ...Field)

	// Printf logs a formatted informational message.
	Printf(format string, args ...any)
}

// Field is a key-value pair attached to a log event.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field       { return Field{Key: key, Value: value} }
func Int(key string, value int) Field       { return Field{Key: key, Value: value} }
func Uint64(key string, value uint64) Field { return Field{Key: key, Value: value} }
func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}
func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

// Big logs an arbitrary-precision term in base 10. Terms longer than
// maxBigDigits are abbreviated to keep log lines bounded.
func Big(key string, value *big.Int) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field.
func Err(err error) Field { return Field{Key: "error", Value: err} }

const maxBigDigits = 64

// ZerologAdapter adapts a zerolog.Logger to the Logger interface.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter wraps an existing zerolog.Logger.
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// NewDefaultLogger writes JSON events to stderr at info level.
func NewDefaultLogger() *ZerologAdapter {
	return NewZerologAdapter(
		zerolog.New(os.Stderr).With().Timestamp().Logger(),
	)
}

// NewLogger writes JSON events to w, tagged with the given component.
func NewLogger(w io.Writer, component string) *ZerologAdapter {
	return NewZerologAdapter(
		zerolog.New(w).With().Str("component", component).Timestamp().Logger(),
	)
}

// NewConsoleLogger writes human-readable events to w. Debug events are
// emitted only when verbose is set.
func NewConsoleLogger(w io.Writer, component string, verbose bool) *ZerologAdapter {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05", NoColor: true}
	return NewZerologAdapter(
		zerolog.New(out).Level(level).With().Str("component", component).Timestamp().Logger(),
	)
}

// With returns a child logger that always carries the given fields.
func (z *ZerologAdapter) With(fields ...Field) *ZerologAdapter {
	ctx := z.logger.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, fieldValue(f.Value))
	}
	return &ZerologAdapter{logger: ctx.Logger()}
}

func fieldValue(v any) any {
	if b, ok := v.(*big.Int); ok {
		return abbreviate(b)
	}
	return v
}

func abbreviate(b *big.Int) string {
	if b == nil {
		return "<nil>"
	}
	s := b.String()
	if len(s) <= maxBigDigits {
		return s
	}
	return s[:maxBigDigits/2] + "..." + s[len(s)-maxBigDigits/2:]
}

func (z *ZerologAdapter) applyFields(event *zerolog.Event, fields []Field) *zerolog.Event {
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			event = event.Str(f.Key, v)
		case int:
			event = event.Int(f.Key, v)
		case int64:
			event = event.Int64(f.Key, v)
		case uint64:
			event = event.Uint64(f.Key, v)
		case float64:
			event = event.Float64(f.Key, v)
		case bool:
			event = event.Bool(f.Key, v)
		case *big.Int:
			event = event.Str(f.Key, abbreviate(v))
		case error:
			event = event.Err(v)
		default:
			event = event.Interface(f.Key, v)
		}
	}
	return event
}

func (z *ZerologAdapter) Info(msg string, fields ...Field) {
	z.applyFields(z.logger.Info(), fields).Msg(msg)
}

func (z *ZerologAdapter) Warn(msg string, fields ...Field) {
	z.applyFields(z.logger.Warn(), fields).Msg(msg)
}

func (z *ZerologAdapter) Error(msg string, err error, fields ...Field) {
	z.applyFields(z.logger.Error().Err(err), fields).Msg(msg)
}

func (z *ZerologAdapter) Debug(msg string, fields ...Field) {
	z.applyFields(z.logger.Debug(), fields).Msg(msg)
}

func (z *ZerologAdapter) Printf(format string, args ...any) {
	z.logger.Info().Msgf(format, args...)
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() *ZerologAdapter {
	return NewZerologAdapter(zerolog.Nop())
}

// StdLoggerAdapter adapts a standard log.Logger to the Logger interface.
// Fields are rendered as key=value pairs after the message.
type StdLoggerAdapter struct {
	logger *stdlog.Logger
}

// NewStdLoggerAdapter wraps logger.
func NewStdLoggerAdapter(logger *stdlog.Logger) *StdLoggerAdapter {
	return &StdLoggerAdapter{logger: logger}
}

func (s *StdLoggerAdapter) write(level, msg string, fields []Field) {
	var b strings.Builder
	b.WriteString("[" + level + "] " + msg)
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, fieldValue(f.Value))
	}
	s.logger.Println(b.String())
}

func (s *StdLoggerAdapter) Info(msg string, fields ...Field)  { s.write("INFO", msg, fields) }
func (s *StdLoggerAdapter) Warn(msg string, fields ...Field)  { s.write("WARN", msg, fields) }
func (s *StdLoggerAdapter) Debug(msg string, fields ...Field) { s.write("DEBUG", msg, fields) }

func (s *StdLoggerAdapter) Error(msg string, err error, fields ...Field) {
	s.write("ERROR", msg, append([]Field{Err(err)}, fields...))
}

func (s *StdLoggerAdapter) Printf(format string, args ...any) {
	s.logger.Printf(format, args...)
}

var (
	_ Logger = (*ZerologAdapter)(nil)
	_ Logger = (*StdLoggerAdapter)(nil)
)
