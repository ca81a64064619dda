package devicetoken

import (
	"context"
	"time"
)

// Storage persists device tokens.
type Storage interface {
	// Upsert inserts t or, when (UserID, Token) already exists, reactivates
	// the row and refreshes LastUsedAt. When t.DeviceID is set, other active
	// tokens of the same user and device are deactivated in the same step.
	Upsert(ctx context.Context, t DeviceToken) (*DeviceToken, error)

	// ListActive returns the user's active tokens, most recently used first.
	// A nil platform matches every platform.
	ListActive(ctx context.Context, userID string, platform *Platform) ([]DeviceToken, error)

	// ListActiveForUsers returns active tokens of every listed user.
	ListActiveForUsers(ctx context.Context, userIDs []string) ([]DeviceToken, error)

	// ListAllActive pages through all active tokens ordered by ID.
	// Pass the last ID of the previous page as afterID, or "" to start.
	ListAllActive(ctx context.Context, afterID string, limit int) ([]DeviceToken, error)

	// Deactivate soft-deletes every row holding one of tokens.
	Deactivate(ctx context.Context, tokens []string, at time.Time) (int, error)

	// DeactivateUser soft-deletes the user's tokens, optionally for one platform.
	DeactivateUser(ctx context.Context, userID string, platform *Platform, at time.Time) (int, error)

	// DeactivateStale soft-deletes active tokens not used since before.
	DeactivateStale(ctx context.Context, before, at time.Time) (int, error)

	// DeleteInactive hard-deletes tokens inactive since before.
	DeleteInactive(ctx context.Context, before time.Time) (int, error)
}
