package util

import (
	"log/slog"
	"os"
)

// NewLogger returns text logs at debug level for development and JSON logs at
// info level otherwise. Both server and worker binaries share this setup so
// log aggregation sees one shape.
func NewLogger(env string) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if env == "development" {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler).With("service", "punctoo")
}
