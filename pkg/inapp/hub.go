package inapp

import (
	"context"
	"sync"
)

// DefaultBufferSize is the per-subscription queue length.
const DefaultBufferSize = 16

// Hub fans events out to the live subscriptions of each user.
// Events for a slow consumer are dropped rather than blocking Publish.
// All methods are safe for concurrent use.
type Hub struct {
	subscribers map[string]map[*Subscription]struct{}
	bufferSize  int
	closed      bool
	mu          sync.RWMutex
	cleanupWg   sync.WaitGroup
}

// NewHub creates a Hub. A bufferSize below 1 uses DefaultBufferSize.
func NewHub(bufferSize int) *Hub {
	if bufferSize < 1 {
		bufferSize = DefaultBufferSize
	}
	return &Hub{
		subscribers: make(map[string]map[*Subscription]struct{}),
		bufferSize:  bufferSize,
	}
}

// Subscribe registers a live subscription for userID. It ends when ctx is
// cancelled or Close is called. Subscribing to a closed hub returns an
// already-closed subscription.
func (h *Hub) Subscribe(ctx context.Context, userID string) *Subscription {
	sub := &Subscription{
		userID: userID,
		ch:     make(chan Event, h.bufferSize),
		hub:    h,
		quit:   make(chan struct{}),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		sub.close()
		return sub
	}

	set, ok := h.subscribers[userID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subscribers[userID] = set
	}
	set[sub] = struct{}{}

	if ctx.Done() != nil {
		h.cleanupWg.Add(1)
		go func() {
			defer h.cleanupWg.Done()
			select {
			case <-ctx.Done():
				h.unsubscribe(sub)
			case <-sub.quit:
			}
		}()
	}

	return sub
}

// Publish delivers ev to every live subscription of userID and reports how
// many accepted it.
func (h *Hub) Publish(_ context.Context, userID string, ev Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return 0
	}

	delivered := 0
	for sub := range h.subscribers[userID] {
		if sub.send(ev) {
			delivered++
		}
	}
	return delivered
}

// Subscribers reports the number of live subscriptions for userID.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}

// Close ends every subscription. It is safe to call more than once.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	for _, set := range h.subscribers {
		for sub := range set {
			sub.close()
		}
	}
	clear(h.subscribers)
	h.mu.Unlock()

	h.cleanupWg.Wait()
	return nil
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.subscribers[sub.userID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subscribers, sub.userID)
		}
	}
	sub.close()
}
