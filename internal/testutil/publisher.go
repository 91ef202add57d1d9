package testutil

import (
	"context"
	"sync"

	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/notify"
)

// Publisher records every published notification.
type Publisher struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (p *Publisher) Publish(_ context.Context, n notify.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, n)
}

func (p *Publisher) Sent() []notify.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]notify.Notification, len(p.sent))
	copy(out, p.sent)
	return out
}

// Events returns the event kinds in publish order.
func (p *Publisher) Events() []notify.Event {
	sent := p.Sent()
	out := make([]notify.Event, len(sent))
	for i, n := range sent {
		out[i] = n.Event
	}
	return out
}

func (p *Publisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = nil
}
