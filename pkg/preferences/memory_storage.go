package preferences

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// MemoryStorage is an in-memory Storage for development and tests.
type MemoryStorage struct {
	items map[string]Preferences
	mu    sync.RWMutex
}

// NewMemoryStorage creates an empty in-memory preferences storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]Preferences)}
}

func (s *MemoryStorage) Get(_ context.Context, userID string) (*Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.items[userID]
	if !ok {
		return nil, ErrPreferencesNotFound
	}
	c := clone(p)
	return &c, nil
}

func (s *MemoryStorage) CreateIfAbsent(_ context.Context, p Preferences) error {
	if p.UserID == "" {
		return fmt.Errorf("%w: user id is required", ErrStorage)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[p.UserID]; !ok {
		s.items[p.UserID] = clone(p)
	}
	return nil
}

func (s *MemoryStorage) Save(_ context.Context, p Preferences) error {
	if p.UserID == "" {
		return fmt.Errorf("%w: user id is required", ErrStorage)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[p.UserID] = clone(p)
	return nil
}

func clone(p Preferences) Preferences {
	c := p
	if p.Channels != nil {
		c.Channels = make(map[notifications.EventType][]notifications.Channel, len(p.Channels))
		for t, chs := range p.Channels {
			c.Channels[t] = slices.Clone(chs)
		}
	}
	return c
}
