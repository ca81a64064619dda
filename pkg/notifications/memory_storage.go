package notifications

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"
)

// MemoryStorage is an in-memory Storage for development and tests.
type MemoryStorage struct {
	items map[string]*Notification
	mu    sync.RWMutex
}

// NewMemoryStorage creates an empty in-memory notification storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]*Notification)}
}

func (s *MemoryStorage) Create(_ context.Context, notif Notification) error {
	if notif.ID == "" || notif.UserID == "" {
		return fmt.Errorf("%w: notification id and user id are required", ErrStorage)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[notif.ID]; exists {
		return fmt.Errorf("%w: duplicate notification id %s", ErrStorage, notif.ID)
	}
	c := clone(notif)
	s.items[notif.ID] = &c
	return nil
}

func (s *MemoryStorage) Get(_ context.Context, id string) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.items[id]
	if !ok {
		return nil, ErrNotificationNotFound
	}
	c := clone(*n)
	return &c, nil
}

func (s *MemoryStorage) List(_ context.Context, userID string, opts ListOptions) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Notification
	for _, n := range s.items {
		if n.UserID != userID {
			continue
		}
		if len(opts.Status) > 0 && !slices.Contains(opts.Status, n.Status) {
			continue
		}
		if len(opts.Types) > 0 && !slices.Contains(opts.Types, n.Type) {
			continue
		}
		out = append(out, clone(*n))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if opts.Offset >= len(out) {
		return []Notification{}, nil
	}
	out = out[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (s *MemoryStorage) CountUnread(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.items {
		if n.UserID == userID && n.Status == StatusSent {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStorage) MarkSent(_ context.Context, id string, sentAt time.Time) error {
	return s.transition(id, StatusSent, func(n *Notification) {
		n.SentAt = &sentAt
		n.UpdatedAt = sentAt
	})
}

func (s *MemoryStorage) MarkFailed(_ context.Context, id string, at time.Time) error {
	return s.transition(id, StatusFailed, func(n *Notification) {
		n.UpdatedAt = at
	})
}

func (s *MemoryStorage) MarkRead(_ context.Context, id string, readAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.items[id]
	if !ok || n.Status != StatusSent {
		return false, nil
	}
	n.Status = StatusRead
	n.ReadAt = &readAt
	n.UpdatedAt = readAt
	return true, nil
}

func (s *MemoryStorage) MarkAllRead(_ context.Context, userID string, readAt time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.items {
		if n.UserID == userID && n.Status == StatusSent {
			n.Status = StatusRead
			n.ReadAt = &readAt
			n.UpdatedAt = readAt
			count++
		}
	}
	return count, nil
}

func (s *MemoryStorage) ListDue(_ context.Context, now time.Time, limit int) ([]Notification, error) {
	if limit <= 0 {
		return []Notification{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Notification
	for _, n := range s.items {
		if n.Status == StatusPending && n.Due(now) {
			out = append(out, clone(*n))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStorage) DeleteOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, n := range s.items {
		if n.CreatedAt.Before(cutoff) {
			delete(s.items, id)
			count++
		}
	}
	return count, nil
}

func (s *MemoryStorage) transition(id string, next Status, apply func(*Notification)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.items[id]
	if !ok {
		return ErrNotificationNotFound
	}
	if !n.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	n.Status = next
	apply(n)
	return nil
}

func clone(n Notification) Notification {
	c := n
	c.Data = maps.Clone(n.Data)
	c.Channels = slices.Clone(n.Channels)
	c.ScheduledAt = cloneTime(n.ScheduledAt)
	c.SentAt = cloneTime(n.SentAt)
	c.ReadAt = cloneTime(n.ReadAt)
	return c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
