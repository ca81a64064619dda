package notifications

import (
	"context"
	"time"
)

// Storage persists notifications. Every mutation is a single conditional
// update so concurrent writers cannot violate the status lifecycle.
type Storage interface {
	// Create stores a new notification.
	Create(ctx context.Context, notif Notification) error

	// Get returns the notification or ErrNotificationNotFound.
	Get(ctx context.Context, id string) (*Notification, error)

	// List returns a user's notifications, newest first.
	List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error)

	// CountUnread counts sent notifications the user has not read yet.
	CountUnread(ctx context.Context, userID string) (int, error)

	// MarkSent moves a pending notification to sent.
	// Returns ErrInvalidTransition when it is no longer pending.
	MarkSent(ctx context.Context, id string, sentAt time.Time) error

	// MarkFailed moves a pending notification to failed.
	// Returns ErrInvalidTransition when it is no longer pending.
	MarkFailed(ctx context.Context, id string, at time.Time) error

	// MarkRead moves a sent notification to read and reports whether a row changed.
	MarkRead(ctx context.Context, id string, readAt time.Time) (bool, error)

	// MarkAllRead moves every sent notification of the user to read.
	MarkAllRead(ctx context.Context, userID string, readAt time.Time) (int, error)

	// ListDue returns pending notifications that are unscheduled or due at now,
	// oldest first, at most limit rows. A limit of zero or less returns none.
	ListDue(ctx context.Context, now time.Time, limit int) ([]Notification, error)

	// DeleteOlderThan removes notifications created before cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// ListOptions filters and paginates List.
type ListOptions struct {
	Limit  int         // 0 means no limit
	Offset int         // rows to skip
	Status []Status    // empty means any status
	Types  []EventType // empty means any type
}
