package logger

import (
	"io"
	"log/slog"
	"strings"
)

// Init sets up the default slog logger.
//
// Pretty output is meant for local development, otherwise the logs are JSON.
func Init(w io.Writer, level string, pretty bool) {
	opts := &slog.HandlerOptions{Level: parseLevel(level), AddSource: !pretty}

	var handler slog.Handler = slog.NewJSONHandler(w, opts)
	if pretty {
		handler = slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// parseLevel converts the configured level into a slog.Level. Unknown values mean info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
