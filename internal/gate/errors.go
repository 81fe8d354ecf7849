package gate

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrTimeout is the cancellation cause of a run whose deadline elapsed.
	ErrTimeout = errors.New("gate: run deadline exceeded")

	// ErrCancelledWhileQueued is returned to callers whose queued request was
	// dropped by CancelAll before it was granted.
	ErrCancelledWhileQueued = errors.New("gate: cancelled while queued")

	// ErrGateBusy reports that a non-blocking run was skipped because the gate
	// was held. The gate itself never returns it; TryRun reports ran == false.
	ErrGateBusy = errors.New("gate: busy")
)

// Reason returns why the run context was cancelled, or nil while it is live.
func Reason(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}
	return context.Cause(ctx)
}

// IsTimeout reports whether ctx was cancelled by the run deadline.
func IsTimeout(ctx context.Context) bool {
	return errors.Is(Reason(ctx), ErrTimeout)
}

func queueCancelledError(reason error) error {
	if reason == nil {
		return ErrCancelledWhileQueued
	}
	return fmt.Errorf("%w: %w", ErrCancelledWhileQueued, reason)
}
