package common

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

const (
	LevelTrace = slog.Level(-8)
)

type contextHandler struct {
	slog.Handler
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if tid, ok := ctx.Value(TraceIDContextKey).(string); ok && (len(tid) > 0) {
			r.AddAttrs(TraceIDAttr(tid))
		}

		if op, ok := ctx.Value(OperationContextKey).(string); ok && (len(op) > 0) {
			r.AddAttrs(OperationAttr(op))
		}
	}

	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{h.Handler.WithAttrs(attrs)}
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.Handler.Enabled(ctx, level)
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{h.Handler.WithGroup(name)}
}

func TraceContextFunc(ctx context.Context, traceID func() string) (context.Context, string) {
	tid, ok := ctx.Value(TraceIDContextKey).(string)
	if !ok || (len(tid) == 0) {
		tid = traceID()
	}

	return context.WithValue(ctx, TraceIDContextKey, tid), tid
}

func TraceContext(ctx context.Context, traceID string) context.Context {
	if tid, ok := ctx.Value(TraceIDContextKey).(string); !ok || (len(tid) == 0) {
		ctx = context.WithValue(ctx, TraceIDContextKey, traceID)
	}

	return ctx
}

func OperationContext(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, OperationContextKey, operation)
}

func newLogger(w io.Writer, level slog.Leveler) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}
	handler := slog.NewJSONHandler(w, opts)
	return slog.New(&contextHandler{handler})
}

// SetupLogs installs the default logger and returns its level so that
// verbosity can be changed after a config reload.
func SetupLogs(stage string, verbose bool) *slog.LevelVar {
	level := &slog.LevelVar{}
	SetLogLevel(level, verbose)

	var w io.Writer = os.Stdout
	if stage == StageTest {
		w = io.Discard
	}

	slog.SetDefault(newLogger(w, level))

	return level
}

func SetLogLevel(level *slog.LevelVar, verbose bool) {
	if level == nil {
		return
	}

	if verbose {
		level.Set(LevelTrace)
	} else {
		level.Set(slog.LevelDebug)
	}
}

func SetupTraceLogs() {
	slog.SetDefault(newLogger(os.Stdout, LevelTrace))
}

func ErrAttr(err error) slog.Attr {
	return slog.Any("error", err)
}

func TraceIDAttr(tid string) slog.Attr {
	return slog.Attr{
		Key:   "traceID",
		Value: slog.StringValue(tid),
	}
}

func OperationAttr(op string) slog.Attr {
	return slog.Attr{
		Key:   "operation",
		Value: slog.StringValue(op),
	}
}

type FmtLogger struct {
	Ctx   context.Context
	Level slog.Level
}

func (l *FmtLogger) Printf(s string, args ...interface{}) {
	msg := fmt.Sprintf(s, args...)
	slog.Log(l.Ctx, l.Level, msg)
}
