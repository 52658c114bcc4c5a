package app

import (
	"context"
	"os/signal"
	"syscall"
	"time"
)

// SetupContext bounds ctx by the -timeout value.
func SetupContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

// SetupSignals cancels ctx on SIGINT or SIGTERM so that a long run stops
// between two terms instead of being killed mid-write.
func SetupSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}

// SetupLifecycle applies both the timeout and signal handling. The run
// stops on whichever comes first; Drive then reports DeadlineExceeded or
// Canceled, which map to distinct exit codes.
func SetupLifecycle(ctx context.Context, timeout time.Duration) (context.Context, *CancelFuncs) {
	ctx, cancelTimeout := SetupContext(ctx, timeout)
	ctx, stopSignals := SetupSignals(ctx)

	return ctx, &CancelFuncs{
		CancelTimeout: cancelTimeout,
		StopSignals:   stopSignals,
	}
}

// CancelFuncs releases what SetupLifecycle acquired.
type CancelFuncs struct {
	CancelTimeout context.CancelFunc
	StopSignals   context.CancelFunc
}

// Cleanup stops signal delivery, then cancels the timeout. Safe on a zero
// value.
func (c *CancelFuncs) Cleanup() {
	if c.StopSignals != nil {
		c.StopSignals()
	}
	if c.CancelTimeout != nil {
		c.CancelTimeout()
	}
}
