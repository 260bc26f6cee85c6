// Package log configures structured JSON logging for the pipeline and defines
// the standard attribute keys used across fit, search and evaluation steps.
package log

import (
	"fmt"
	"log/slog"
	"os"
)

// SetupLogger installs a JSON slog logger as the process default.
func SetupLogger(loglevel string) {
	ops := slog.HandlerOptions{
		Level: ToLogLevel(loglevel),
	}
	handler := slog.NewJSONHandler(os.Stderr, &ops)
	errFmtHandler := WrapByErrFmtHandler(handler)
	slog.SetDefault(slog.New(errFmtHandler))
}

// ToLogLevel maps a level name to its slog level.
func ToLogLevel(level string) slog.Level {
	switch level {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}
