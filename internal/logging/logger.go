package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup initializes the global slog logger with JSON output to stdout. Extra
// handlers receive every record alongside stdout.
func Setup(level slog.Level, extra ...slog.Handler) *slog.Logger {
	logger := New(os.Stdout, level, extra...)
	slog.SetDefault(logger)
	return logger
}

func New(w io.Writer, level slog.Level, extra ...slog.Handler) *slog.Logger {
	var handler slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	if len(extra) > 0 {
		handler = NewMultiHandler(append([]slog.Handler{handler}, extra...)...)
	}
	return slog.New(handler)
}
