package acrylic

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from the render
// thread.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for acrylic and all its sub-packages.
// By default, acrylic produces no log output. Call SetLogger to enable
// logging. Schedulers created after the call pick up the new logger;
// existing schedulers keep the one they were built with.
//
// SetLogger is safe for concurrent use: it stores the new logger
// atomically. Pass nil to disable logging (restore default silent
// behavior).
//
// Log levels used by acrylic:
//   - [slog.LevelDebug]: internal diagnostics (chain rebuilds, pass
//     membership changes, publish events)
//   - [slog.LevelInfo]: lifecycle events (scheduler initialized)
//   - [slog.LevelWarn]: degraded operation (missing host pipeline,
//     failed target allocation, rejected reconfiguration)
//
// Example:
//
//	// Enable info-level logging to stderr:
//	acrylic.SetLogger(slog.Default())
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by acrylic. Layers pass it to
// their filters at construction so the sub-packages share the same
// configuration without import cycles.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
