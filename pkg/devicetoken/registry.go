package devicetoken

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/validator"
)

// Registry registers, lists and retires device tokens.
type Registry struct {
	storage Storage
	cfg     Config
	logger  *slog.Logger
	now     func() time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithConfig sets validation thresholds.
func WithConfig(cfg Config) RegistryOption {
	return func(r *Registry) {
		r.cfg = cfg
	}
}

// WithLogger sets the logger for the Registry.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRegistry creates a Registry over storage.
func NewRegistry(storage Storage, opts ...RegistryOption) *Registry {
	r := &Registry{
		storage: storage,
		cfg:     DefaultConfig(),
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register validates and stores a token. Re-registering a known token for
// the same user reactivates it; a token registered with a DeviceID replaces
// any other active token of that device.
func (r *Registry) Register(ctx context.Context, p RegisterParams) (*DeviceToken, error) {
	p.Token = strings.TrimSpace(p.Token)
	p.DeviceID = strings.TrimSpace(p.DeviceID)

	if err := r.validate(p); err != nil {
		return nil, errors.Join(ErrInvalidTokenFormat, err)
	}

	now := r.now()
	t, err := r.storage.Upsert(ctx, DeviceToken{
		UserID:     p.UserID,
		Token:      p.Token,
		Platform:   p.Platform,
		DeviceID:   p.DeviceID,
		IsActive:   true,
		LastUsedAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, errors.Join(ErrFailedToRegister, err)
	}

	r.logger.LogAttrs(ctx, slog.LevelDebug, "device token registered",
		logger.UserID(p.UserID),
		logger.Platform(p.Platform.String()),
		logger.Token(p.Token),
	)
	return t, nil
}

func (r *Registry) validate(p RegisterParams) error {
	minLen := r.cfg.MinLength(p.Platform)
	return validator.Apply(
		validator.Required("user_id", p.UserID),
		validator.Required("token", p.Token),
		validator.InList("platform", p.Platform, AllPlatforms()),
		validator.When(p.Token != "" && minLen > 0, validator.MinLen("token", p.Token, minLen)),
	)
}

// ListActive returns the user's active tokens, most recently used first.
// A nil platform matches every platform.
func (r *Registry) ListActive(ctx context.Context, userID string, platform *Platform) ([]DeviceToken, error) {
	return r.storage.ListActive(ctx, userID, platform)
}

// ListActiveForUsers returns active tokens of all listed users.
func (r *Registry) ListActiveForUsers(ctx context.Context, userIDs []string) ([]DeviceToken, error) {
	return r.storage.ListActiveForUsers(ctx, userIDs)
}

// ListAllActive pages through every active token in ID order.
func (r *Registry) ListAllActive(ctx context.Context, afterID string, limit int) ([]DeviceToken, error) {
	return r.storage.ListAllActive(ctx, afterID, limit)
}

// Deactivate retires token and reports whether an active row matched.
// An unknown token is not an error.
func (r *Registry) Deactivate(ctx context.Context, token string) (bool, error) {
	n, err := r.storage.Deactivate(ctx, []string{token}, r.now())
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeactivateAll retires the user's tokens, for one platform when given.
func (r *Registry) DeactivateAll(ctx context.Context, userID string, platform *Platform) (int, error) {
	n, err := r.storage.DeactivateUser(ctx, userID, platform, r.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		r.logger.LogAttrs(ctx, slog.LevelInfo, "device tokens deactivated for user",
			logger.UserID(userID),
			logger.Count(n),
		)
	}
	return n, nil
}

// BulkDeactivate retires every listed token in one statement.
func (r *Registry) BulkDeactivate(ctx context.Context, tokens []string) (int, error) {
	if len(tokens) == 0 {
		return 0, nil
	}
	return r.storage.Deactivate(ctx, tokens, r.now())
}

// PruneInactive hard-deletes tokens that have been inactive for more than
// daysInactive days.
func (r *Registry) PruneInactive(ctx context.Context, daysInactive int) (int, error) {
	if daysInactive <= 0 {
		return 0, nil
	}
	return r.storage.DeleteInactive(ctx, r.now().AddDate(0, 0, -daysInactive))
}

// DeactivateStale retires active tokens unused for more than unusedDays days.
// A non-positive value disables the sweep.
func (r *Registry) DeactivateStale(ctx context.Context, unusedDays int) (int, error) {
	if unusedDays <= 0 {
		return 0, nil
	}
	now := r.now()
	return r.storage.DeactivateStale(ctx, now.AddDate(0, 0, -unusedDays), now)
}
