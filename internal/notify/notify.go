// Package notify is the in-process notification channel for swap events.
// Publishing is fire-and-forget: handler failures are logged and never
// reach the publisher.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Event string

const (
	EventSwapCreated Event = "swap_created"
	EventSwapDue     Event = "swap_due"
	EventSwapExpired Event = "swap_expired"
)

type Notification struct {
	Event      Event
	Message    string
	SwapID     uuid.UUID
	ReturnDate time.Time
	At         time.Time
}

// Publisher is what the swap engine depends on.
type Publisher interface {
	Publish(ctx context.Context, n Notification)
}

// Handler receives notifications for the events it subscribed to.
type Handler func(ctx context.Context, n Notification) error

// Subscription identifies a registered handler for Unsubscribe.
type Subscription struct {
	event Event
	id    uint64
}

type entry struct {
	id      uint64
	handler Handler
}

// Hub is a process-lifetime registry of handlers keyed by event.
type Hub struct {
	mu       sync.RWMutex
	handlers map[Event][]entry
	nextID   uint64
	logger   *slog.Logger
	now      func() time.Time
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		handlers: make(map[Event][]entry),
		logger:   logger,
		now:      time.Now,
	}
}

func (h *Hub) Subscribe(event Event, handler Handler) Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	h.handlers[event] = append(h.handlers[event], entry{id: h.nextID, handler: handler})
	return Subscription{event: event, id: h.nextID}
}

// SubscribeAll registers handler for every known event.
func (h *Hub) SubscribeAll(handler Handler) []Subscription {
	events := []Event{EventSwapCreated, EventSwapDue, EventSwapExpired}
	subs := make([]Subscription, 0, len(events))
	for _, e := range events {
		subs = append(subs, h.Subscribe(e, handler))
	}
	return subs
}

// Unsubscribe removes the handler. Unknown subscriptions are ignored.
func (h *Hub) Unsubscribe(sub Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	list := h.handlers[sub.event]
	for i, e := range list {
		if e.id == sub.id {
			h.handlers[sub.event] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Publish runs every handler subscribed to n.Event in subscription order.
func (h *Hub) Publish(ctx context.Context, n Notification) {
	if n.At.IsZero() {
		n.At = h.now()
	}

	h.mu.RLock()
	list := make([]entry, len(h.handlers[n.Event]))
	copy(list, h.handlers[n.Event])
	h.mu.RUnlock()

	for _, e := range list {
		if err := h.invoke(ctx, e.handler, n); err != nil {
			h.logger.Error("notification handler failed",
				"event", string(n.Event),
				"swap_id", n.SwapID.String(),
				"error", err,
			)
		}
	}
}

func (h *Hub) invoke(ctx context.Context, handler Handler, n Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(ctx, n)
}

// Discard drops every notification.
type Discard struct{}

func (Discard) Publish(context.Context, Notification) {}
