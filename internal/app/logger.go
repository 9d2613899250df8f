package app

import (
	"io"
	"log/slog"
)

// logLevels maps the CLI's level names onto slog levels. Unknown names fall
// back to info; the CLI validates the flag before it reaches here.
var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// newLogger builds the app's private slog.Logger. It never touches the
// process default: the instance travels into the build through ctxlog, so
// concurrent apps (tests, mostly) cannot observe each other's output.
func newLogger(level, format string, outW io.Writer) *slog.Logger {
	lvl, ok := logLevels[level]
	if !ok {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
