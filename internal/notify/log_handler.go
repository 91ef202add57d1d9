package notify

import (
	"context"
	"log/slog"
)

// LogHandler writes one log line per notification.
func LogHandler(logger *slog.Logger) Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, n Notification) error {
		logger.InfoContext(ctx, n.Message,
			"event", string(n.Event),
			"swap_id", n.SwapID.String(),
			"return_date", n.ReturnDate.Format("2006-01-02"),
		)
		return nil
	}
}
