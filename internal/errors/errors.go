// Package apperrors defines the structured error types shared by the CLI,
// the REPL and the HTTP server, and maps them onto process exit codes.
//
// Every type that carries a cause implements Unwrap, so callers inspect
// chains with errors.Is and errors.As rather than string matching.
package apperrors

import (
	"context"
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitSuccess       = 0   // Normal termination.
	ExitErrorGeneric  = 1   // Any failure without a more specific code.
	ExitErrorTimeout  = 2   // The run hit its -timeout.
	ExitErrorMismatch = 3   // Two replays of the same plan disagreed.
	ExitErrorConfig   = 4   // Invalid flags or environment.
	ExitErrorCanceled = 130 // Interrupted (SIGINT).
)

// ConfigError reports invalid user configuration. The application cannot
// proceed and exits with ExitErrorConfig.
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a ConfigError with a formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// SequenceError records a failure while driving a named sequence, such as a
// cancelled Skip or an unknown kind.
type SequenceError struct {
	// Kind is the registry name of the sequence that failed.
	Kind string
	// Cause is the underlying error.
	Cause error
}

func (e SequenceError) Error() string {
	if e.Kind == "" {
		return e.Cause.Error()
	}
	return fmt.Sprintf("sequence %s: %v", e.Kind, e.Cause)
}

// Unwrap returns the underlying cause.
func (e SequenceError) Unwrap() error { return e.Cause }

// NewSequenceError wraps cause with the kind it occurred in. It returns nil
// when cause is nil.
func NewSequenceError(kind string, cause error) error {
	if cause == nil {
		return nil
	}
	return SequenceError{Kind: kind, Cause: cause}
}

// MismatchError reports that two replays of the same plan produced
// different terms.
type MismatchError struct {
	Kind  string
	Index int
}

func (e MismatchError) Error() string {
	return fmt.Sprintf("sequence %s: replay diverged at term %d", e.Kind, e.Index)
}

// ServerError represents a failure in the HTTP server component.
type ServerError struct {
	Message string
	Cause   error
}

func (e ServerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e ServerError) Unwrap() error { return e.Cause }

// NewServerError creates a ServerError with a message and optional cause.
func NewServerError(message string, cause error) error {
	return ServerError{Message: message, Cause: cause}
}

// WrapError annotates err with a formatted context message using %w.
// It returns nil when err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError reports whether err is a cancellation or deadline error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ValidationError describes a rejected input field, either a CLI flag or an
// HTTP query parameter.
type ValidationError struct {
	// Field is the name of the offending parameter.
	Field string
	// Message describes why validation failed.
	Message string
	// Value is the rejected value, when known.
	Value any
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, message string, value any) error {
	return ValidationError{Field: field, Message: message, Value: value}
}

// ExitCode maps err onto the process exit code without printing anything.
func ExitCode(err error) int {
	var cfgErr ConfigError
	var mismatch MismatchError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &cfgErr):
		return ExitErrorConfig
	case errors.As(err, &mismatch):
		return ExitErrorMismatch
	default:
		return ExitErrorGeneric
	}
}
