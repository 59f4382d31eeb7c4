package observability

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

const appName = "orion-collector"

// NewLogger builds the process logger: colorized tint output for the text
// format, JSON lines otherwise. Logs go to stderr so the stdout sink's
// record stream stays clean.
func NewLogger(level slog.Level, format, version string) *slog.Logger {
	if format == "text" {
		h := tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("app", appName)
	}

	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(h).With(
		"app", appName,
		"version", version,
	)
}
