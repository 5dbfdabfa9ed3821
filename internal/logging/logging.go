package logging

import (
	"log/slog"
	"os"
	"strings"
)

// New builds the process logger, writing text records to stdout at the
// configured level. Unknown level strings resolve to debug so a typo in
// config surfaces everything rather than hiding it.
func New(level string) *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler)
}

// ForComponent derives a child logger tagged with the adapter or pipeline
// name, so every record carries its origin.
func ForComponent(base *slog.Logger, name string) *slog.Logger {
	if base == nil {
		return nil
	}
	return base.With("component", name)
}

func parseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "info":
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
