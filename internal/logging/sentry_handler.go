package logging

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"
)

// SentryHandler is an slog.Handler that reports ERROR+ records to Sentry.
// Without an initialized Sentry client the capture is a no-op.
type SentryHandler struct {
	attrs   []slog.Attr
	group   string
	capture func(*sentry.Event) *sentry.EventID
}

func NewSentryHandler() *SentryHandler {
	return &SentryHandler{capture: sentry.CaptureEvent}
}

// Enabled only handles ERROR and above.
func (h *SentryHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *SentryHandler) Handle(_ context.Context, record slog.Record) error {
	event := sentry.NewEvent()
	event.Level = sentry.LevelError
	event.Message = record.Message
	event.Timestamp = record.Time

	extra := make(map[string]interface{}, len(h.attrs)+record.NumAttrs())
	add := func(key string, a slog.Attr) {
		switch key {
		case "swap_id", "event", "request_id":
			event.Tags[key] = a.Value.String()
		case "error":
			event.Extra["error"] = a.Value.String()
		default:
			extra[key] = a.Value.Any()
		}
	}
	for _, a := range h.attrs {
		add(a.Key, a)
	}
	record.Attrs(func(a slog.Attr) bool {
		add(h.prefixed(a.Key), a)
		return true
	})

	for k, v := range extra {
		event.Extra[k] = v
	}
	h.capture(event)
	return nil
}

func (h *SentryHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]slog.Attr{}, h.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, slog.Attr{Key: h.prefixed(a.Key), Value: a.Value})
	}
	return &next
}

func (h *SentryHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.group = h.prefixed(name)
	return &next
}

func (h *SentryHandler) prefixed(key string) string {
	if h.group == "" {
		return key
	}
	return h.group + "." + key
}
