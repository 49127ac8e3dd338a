package common

import (
	"context"
	"log/slog"
	randv2 "math/rand/v2"
	"runtime/debug"
	"time"
)

type PeriodicJob interface {
	NewParams() any
	RunOnce(ctx context.Context, params any) error
	Interval() time.Duration
	// this is a soft non-enforced timeout for context
	Timeout() time.Duration
	// NOTE: if no jitter is needed, return 1, not 0
	Jitter() time.Duration
	Name() string
	// Return nil if manual triggering is not supported.
	Trigger() <-chan struct{}
}

func runWithTimeout(ctx context.Context, j PeriodicJob) error {
	runCtx := ctx
	var cancel context.CancelFunc

	if timeout := j.Timeout(); timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return j.RunOnce(runCtx, j.NewParams())
}

func RunPeriodicJob(ctx context.Context, j PeriodicJob) {
	ctx = context.WithValue(ctx, TraceIDContextKey, j.Name())

	defer func() {
		if rvr := recover(); rvr != nil {
			slog.ErrorContext(ctx, "Periodic job crashed", "panic", rvr, "stack", string(debug.Stack()))
		}
	}()

	slog.DebugContext(ctx, "Starting periodic job")

	// If j.Trigger() returns nil, the case <-trigger below is ignored.
	trigger := j.Trigger()

	for {
		interval := j.Interval()
		jitter := max(j.Jitter(), 1)

		delay := interval + time.Duration(randv2.Int64N(int64(jitter)))
		timer := time.NewTimer(delay)

		select {
		case <-ctx.Done():
			_ = timer.Stop()
			slog.DebugContext(ctx, "Periodic job finished")
			return

		case <-trigger:
			_ = timer.Stop()
			slog.DebugContext(ctx, "Forcing periodic job run", "reason", "manual_trigger")

		case <-timer.C:
			slog.DebugContext(ctx, "Running periodic job once", "interval", interval.String(), "jitter", jitter.String())
		}

		if err := runWithTimeout(ctx, j); err != nil {
			slog.ErrorContext(ctx, "Periodic job failed", ErrAttr(err))
		}
	}
}

func RunPeriodicJobOnce(ctx context.Context, j PeriodicJob) (err error) {
	ctx = context.WithValue(ctx, TraceIDContextKey, j.Name())

	defer func() {
		if rvr := recover(); rvr != nil {
			slog.ErrorContext(ctx, "Periodic job crashed", "panic", rvr, "stack", string(debug.Stack()))
			err = errJobCrashed
		}
	}()

	slog.DebugContext(ctx, "Running periodic job once")

	err = runWithTimeout(ctx, j)
	if err != nil {
		slog.ErrorContext(ctx, "Periodic job failed", ErrAttr(err))
	}
	return err
}
