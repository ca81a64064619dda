package scheduler

import (
	"context"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// NotificationStore is the part of notifications.Storage the scheduler uses.
type NotificationStore interface {
	ListDue(ctx context.Context, now time.Time, limit int) ([]notifications.Notification, error)
	MarkFailed(ctx context.Context, id string, at time.Time) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// Dispatcher replays a persisted notification. notifications.Manager implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, notif *notifications.Notification) ([]notifications.DeliveryResult, error)
}

// TokenRegistry runs age-based token hygiene. devicetoken.Registry implements it.
type TokenRegistry interface {
	DeactivateStale(ctx context.Context, unusedDays int) (int, error)
	PruneInactive(ctx context.Context, daysInactive int) (int, error)
}

// TokenCleaner probes active tokens against the push provider. push.Sender implements it.
type TokenCleaner interface {
	CleanupInvalidTokens(ctx context.Context) (int, error)
}

// Locker provides cross-process exclusion for the dispatch tick.
// TryLock reports false without error when another holder owns key.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, ok bool, err error)
}

// Observer receives tick telemetry.
type Observer interface {
	TickCompleted(tick string, processed int, elapsed time.Duration)
	TickSkipped(tick string)
}

type noopObserver struct{}

func (noopObserver) TickCompleted(string, int, time.Duration) {}
func (noopObserver) TickSkipped(string)                       {}
