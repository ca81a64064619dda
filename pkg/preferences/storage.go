package preferences

import "context"

// Storage persists preferences, one record per user.
type Storage interface {
	// Get returns the user's preferences or ErrPreferencesNotFound.
	Get(ctx context.Context, userID string) (*Preferences, error)

	// CreateIfAbsent inserts p unless a record for p.UserID already exists.
	// Losing a creation race is not an error.
	CreateIfAbsent(ctx context.Context, p Preferences) error

	// Save inserts or fully replaces the user's record.
	Save(ctx context.Context, p Preferences) error
}
