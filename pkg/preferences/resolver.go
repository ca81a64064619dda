package preferences

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/validator"
)

// Resolver answers delivery preference questions for the notification
// Manager and applies user edits.
type Resolver struct {
	storage  Storage
	defaults Defaults
	logger   *slog.Logger
	now      func() time.Time
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithDefaults replaces the built-in per-event channel defaults.
func WithDefaults(d Defaults) ResolverOption {
	return func(r *Resolver) {
		if d != nil {
			r.defaults = d.clone()
		}
	}
}

// WithLogger sets the logger for the Resolver.
func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// NewResolver creates a Resolver over storage.
func NewResolver(storage Storage, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		storage:  storage,
		defaults: DefaultChannels(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ notifications.Resolver = (*Resolver)(nil)

// GetOrCreate returns the user's preferences, creating the defaults on
// first access. Concurrent first accesses converge on one record.
func (r *Resolver) GetOrCreate(ctx context.Context, userID string) (*Preferences, error) {
	p, err := r.storage.Get(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrPreferencesNotFound) {
		return nil, errors.Join(ErrFailedToLoad, err)
	}

	if err := r.storage.CreateIfAbsent(ctx, New(userID, r.defaults, r.now())); err != nil {
		return nil, errors.Join(ErrFailedToSave, err)
	}
	r.logger.LogAttrs(ctx, slog.LevelDebug, "default notification preferences created", logger.UserID(userID))

	p, err = r.storage.Get(ctx, userID)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoad, err)
	}
	return p, nil
}

// ResolveChannels returns the channels the user receives eventType on.
// Event types without a configured list fall back to push.
func (r *Resolver) ResolveChannels(ctx context.Context, userID string, eventType notifications.EventType) ([]notifications.Channel, error) {
	p, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return p.EffectiveChannels(eventType, r.defaults), nil
}

// IsInQuietHours reports whether now is inside the user's quiet window.
func (r *Resolver) IsInQuietHours(ctx context.Context, userID string, now time.Time) (bool, error) {
	p, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return false, err
	}
	return p.InQuietHours(now), nil
}

// QuietHoursEnd returns when the user's current quiet window ends.
func (r *Resolver) QuietHoursEnd(ctx context.Context, userID string, now time.Time) (time.Time, bool, error) {
	p, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return time.Time{}, false, err
	}
	end, ok := p.QuietWindowEnd(now)
	return end, ok, nil
}

// Update validates and merges u into the user's preferences.
func (r *Resolver) Update(ctx context.Context, userID string, u Update) (*Preferences, error) {
	if err := validateUpdate(u); err != nil {
		return nil, err
	}

	p, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	u.apply(p, r.now())
	if err := r.storage.Save(ctx, *p); err != nil {
		return nil, errors.Join(ErrFailedToSave, err)
	}

	r.logger.LogAttrs(ctx, slog.LevelInfo, "notification preferences updated", logger.UserID(userID))
	return p, nil
}

func validateUpdate(u Update) error {
	rules := make([]validator.Rule, 0, 3+2*len(u.Channels))
	if u.QuietHoursStart != nil {
		rules = append(rules, validator.When(*u.QuietHoursStart != "",
			validator.Clock("quiet_hours_start", *u.QuietHoursStart)))
	}
	if u.QuietHoursEnd != nil {
		rules = append(rules, validator.When(*u.QuietHoursEnd != "",
			validator.Clock("quiet_hours_end", *u.QuietHoursEnd)))
	}
	if u.Timezone != nil {
		rules = append(rules, validator.Timezone("timezone", *u.Timezone))
	}
	for t, chs := range u.Channels {
		rules = append(rules,
			validator.InList("channels", t, notifications.AllEventTypes()),
			validator.EachInList("channels."+t.String(), chs, notifications.AllChannels()),
		)
	}
	return validator.Apply(rules...)
}
