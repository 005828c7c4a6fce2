package observability

import (
	"io"
	"log/slog"
	"strings"
)

// LoggerConfig selects the level and output format of the logger.
type LoggerConfig struct {
	Level  string
	Format string
}

// NewLogger builds a slog logger writing to w. Unknown formats fall back to
// text and unknown levels to info.
func NewLogger(w io.Writer, cfg LoggerConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a config level name to a slog level.
func ParseLevel(level string) slog.Level {
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
