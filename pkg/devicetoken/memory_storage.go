package devicetoken

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage is an in-memory Storage for development and tests.
type MemoryStorage struct {
	items map[string]*DeviceToken // keyed by ID
	mu    sync.RWMutex
}

// NewMemoryStorage creates an empty in-memory token storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]*DeviceToken)}
}

func (s *MemoryStorage) Upsert(_ context.Context, t DeviceToken) (*DeviceToken, error) {
	if t.UserID == "" || t.Token == "" {
		return nil, fmt.Errorf("%w: user id and token are required", ErrStorage)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if t.DeviceID != "" {
		for _, existing := range s.items {
			if existing.IsActive && existing.UserID == t.UserID &&
				existing.DeviceID == t.DeviceID && existing.Token != t.Token {
				existing.IsActive = false
				existing.UpdatedAt = t.UpdatedAt
			}
		}
	}

	for _, existing := range s.items {
		if existing.UserID == t.UserID && existing.Token == t.Token {
			existing.Platform = t.Platform
			if t.DeviceID != "" {
				existing.DeviceID = t.DeviceID
			}
			existing.IsActive = true
			existing.LastUsedAt = t.LastUsedAt
			existing.UpdatedAt = t.UpdatedAt
			c := *existing
			return &c, nil
		}
	}

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.IsActive = true
	c := t
	s.items[t.ID] = &c
	return &t, nil
}

func (s *MemoryStorage) ListActive(_ context.Context, userID string, platform *Platform) ([]DeviceToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []DeviceToken
	for _, t := range s.items {
		if !t.IsActive || t.UserID != userID {
			continue
		}
		if platform != nil && t.Platform != *platform {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastUsedAt.After(out[j].LastUsedAt)
	})
	return out, nil
}

func (s *MemoryStorage) ListActiveForUsers(_ context.Context, userIDs []string) ([]DeviceToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []DeviceToken
	for _, t := range s.items {
		if t.IsActive && slices.Contains(userIDs, t.UserID) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].LastUsedAt.After(out[j].LastUsedAt)
	})
	return out, nil
}

func (s *MemoryStorage) ListAllActive(_ context.Context, afterID string, limit int) ([]DeviceToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []DeviceToken
	for _, t := range s.items {
		if t.IsActive && t.ID > afterID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStorage) Deactivate(_ context.Context, tokens []string, at time.Time) (int, error) {
	return s.deactivateWhere(at, func(t *DeviceToken) bool {
		return slices.Contains(tokens, t.Token)
	}), nil
}

func (s *MemoryStorage) DeactivateUser(_ context.Context, userID string, platform *Platform, at time.Time) (int, error) {
	return s.deactivateWhere(at, func(t *DeviceToken) bool {
		return t.UserID == userID && (platform == nil || t.Platform == *platform)
	}), nil
}

func (s *MemoryStorage) DeactivateStale(_ context.Context, before, at time.Time) (int, error) {
	return s.deactivateWhere(at, func(t *DeviceToken) bool {
		return t.LastUsedAt.Before(before)
	}), nil
}

func (s *MemoryStorage) DeleteInactive(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, t := range s.items {
		if !t.IsActive && t.UpdatedAt.Before(before) {
			delete(s.items, id)
			count++
		}
	}
	return count, nil
}

func (s *MemoryStorage) deactivateWhere(at time.Time, match func(*DeviceToken) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, t := range s.items {
		if t.IsActive && match(t) {
			t.IsActive = false
			t.UpdatedAt = at
			count++
		}
	}
	return count
}
