package pytauri

import (
	"log/slog"
	"sync/atomic"
)

// The bridge emits exactly two kinds of diagnostics: a Future abandoned
// while still running, and a cancellation failure during abandonment.
// Both are advisory and non-fatal, and are routed through whatever
// structured logger the host provides.

var diagLogger atomic.Pointer[slog.Logger]

// SetLogger routes the bridge's diagnostic warnings through l.
// The default is slog.Default().
func SetLogger(l *slog.Logger) {
	diagLogger.Store(l)
}

func diag() *slog.Logger {
	if l := diagLogger.Load(); l != nil {
		return l
	}
	return slog.Default()
}
