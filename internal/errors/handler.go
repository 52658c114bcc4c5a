package apperrors

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// ColorProvider supplies terminal color codes. It lives here so that this
// package does not import the ui package.
type ColorProvider interface {
	Yellow() string
	Red() string
	Reset() string
}

// DefaultColorProvider provides no color codes.
type DefaultColorProvider struct{}

func (DefaultColorProvider) Yellow() string { return "" }
func (DefaultColorProvider) Red() string    { return "" }
func (DefaultColorProvider) Reset() string  { return "" }

// HandleRunError prints a status line describing why a run failed and
// returns the matching exit code. A nil err returns ExitSuccess and prints
// nothing.
func HandleRunError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}
	if colors == nil {
		colors = DefaultColorProvider{}
	}

	msgSuffix := ""
	if duration > 0 {
		msgSuffix = fmt.Sprintf(" after %s%s%s", colors.Yellow(), duration, colors.Reset())
	}

	code := ExitCode(err)
	switch code {
	case ExitErrorTimeout:
		fmt.Fprintf(out, "Status: Failure (Timeout). The execution limit was reached%s.\n", msgSuffix)
	case ExitErrorCanceled:
		fmt.Fprintf(out, "%sStatus: Canceled%s.%s\n", colors.Yellow(), msgSuffix, colors.Reset())
	case ExitErrorConfig:
		fmt.Fprintf(out, "%sConfiguration error:%s %v\n", colors.Red(), colors.Reset(), err)
	case ExitErrorMismatch:
		var mismatch MismatchError
		errors.As(err, &mismatch)
		fmt.Fprintf(out, "%sStatus: Mismatch.%s Replays of %s disagree at term %d.\n",
			colors.Red(), colors.Reset(), mismatch.Kind, mismatch.Index)
	default:
		fmt.Fprintf(out, "Status: Failure. An unexpected error occurred: %v\n", err)
	}
	return code
}
