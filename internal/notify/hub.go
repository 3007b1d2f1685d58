package notify

import (
	"context"
	"sync"
)

const subscriberBuffer = 16

// Hub is an in-process Broker. Slow subscribers miss notifications rather than
// blocking the publisher.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan Notification]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Notification]struct{})}
}

func (h *Hub) Notify(_ context.Context, n Notification) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[n.SessionID] {
		select {
		case ch <- n:
		default:
		}
	}
	return nil
}

func (h *Hub) Subscribe(ctx context.Context, sessionID string) (<-chan Notification, error) {
	ch := make(chan Notification, subscriberBuffer)

	h.mu.Lock()
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[chan Notification]struct{})
	}
	h.subs[sessionID][ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs[sessionID], ch)
		if len(h.subs[sessionID]) == 0 {
			delete(h.subs, sessionID)
		}
		h.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}
