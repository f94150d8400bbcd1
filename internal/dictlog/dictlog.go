// Package dictlog wraps log/slog setup and a process-scoped trace
// toggle, mirroring the C original's DEEN_LOG_TRACE/INFO/ERROR macros
// and grounded on the teacher's util.InitSlog.
package dictlog

import (
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/k0kubun/pp/v3"
)

var traceEnabled atomic.Bool

// Init configures the default slog logger for levelName ("debug",
// "info", "warn", "error"; unrecognized values fall back to "info").
func Init(levelName string) {
	var level slog.Level
	switch strings.ToLower(levelName) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// SetTrace enables or disables trace-level dumps for the current process.
func SetTrace(enabled bool) {
	traceEnabled.Store(enabled)
	if enabled {
		Init("debug")
	}
}

// TraceEnabled reports whether trace dumps are currently enabled.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

// Trace pretty-prints v via k0kubun/pp when tracing is enabled,
// prefixed by label. It is a no-op otherwise, so call sites can call
// it unconditionally in hot paths (e.g. once per install ref flush).
func Trace(label string, v interface{}) {
	if !traceEnabled.Load() {
		return
	}
	pp.Print(label + ": ")
	pp.Println(v)
}
