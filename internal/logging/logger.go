package logging

import (
	"log/slog"
	"os"
	"strings"
)

// StdoutHandler returns the JSON stdout handler at the level named by
// LOG_LEVEL. Unknown or empty values fall back to info.
func StdoutHandler() slog.Handler {
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(os.Getenv("LOG_LEVEL")),
	})
}

// Setup installs the stdout handler as the global logger. Called before
// the database is up; main swaps in the fan-out handler once it is.
func Setup() {
	slog.SetDefault(slog.New(StdoutHandler()))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
