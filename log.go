package vkframe

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record; Enabled reports false so callers skip
// formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger sets the logger used by the backend. By default nothing is
// logged. Pass nil to restore the silent default.
//
// Levels:
//   - Debug: per-invalidate negotiation results
//   - Info: device selection, swapchain builds, shutdown
//   - Warn: degraded queue paths, missing optional layers
//   - Error: the diagnostic written right before a fatal abort
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current backend logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
