package inapp

import "sync"

// Subscription is one live receiver of a user's events.
type Subscription struct {
	userID string
	ch     chan Event
	hub    *Hub

	mu     sync.RWMutex
	closed bool
	quit   chan struct{}
}

// UserID returns the user this subscription listens for.
func (s *Subscription) UserID() string { return s.userID }

// Events returns the receive channel. It is closed when the subscription ends.
func (s *Subscription) Events() <-chan Event { return s.ch }

// Close ends the subscription and removes it from the hub.
func (s *Subscription) Close() error {
	s.hub.unsubscribe(s)
	return nil
}

func (s *Subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.ch)
		close(s.quit)
	}
}

func (s *Subscription) send(ev Event) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- ev:
		return true
	default:
		return false
	}
}
