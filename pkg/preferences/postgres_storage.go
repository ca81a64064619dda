package preferences

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dmitrymomot/notifykit/pkg/pg"
)

// PostgresStorage stores preferences in the notification_preferences table.
type PostgresStorage struct {
	db pg.DB
}

// NewPostgresStorage creates a Storage backed by db.
func NewPostgresStorage(db pg.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

func (s *PostgresStorage) Get(ctx context.Context, userID string) (*Preferences, error) {
	var (
		p   Preferences
		raw []byte
	)
	err := s.db.QueryRow(ctx, `
		SELECT user_id, channels, email_enabled, push_enabled,
		       quiet_hours_start, quiet_hours_end, timezone, created_at, updated_at
		FROM notification_preferences WHERE user_id = $1`, userID,
	).Scan(&p.UserID, &raw, &p.EmailEnabled, &p.PushEnabled,
		&p.QuietHoursStart, &p.QuietHoursEnd, &p.Timezone, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrPreferencesNotFound
		}
		return nil, errors.Join(ErrStorage, err)
	}

	var channels map[string][]string
	if err := json.Unmarshal(raw, &channels); err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	p.Channels = decodeChannels(channels)
	return &p, nil
}

func (s *PostgresStorage) CreateIfAbsent(ctx context.Context, p Preferences) error {
	return s.write(ctx, p, `ON CONFLICT (user_id) DO NOTHING`)
}

func (s *PostgresStorage) Save(ctx context.Context, p Preferences) error {
	return s.write(ctx, p, `ON CONFLICT (user_id) DO UPDATE SET
		channels          = EXCLUDED.channels,
		email_enabled     = EXCLUDED.email_enabled,
		push_enabled      = EXCLUDED.push_enabled,
		quiet_hours_start = EXCLUDED.quiet_hours_start,
		quiet_hours_end   = EXCLUDED.quiet_hours_end,
		timezone          = EXCLUDED.timezone,
		updated_at        = EXCLUDED.updated_at`)
}

func (s *PostgresStorage) write(ctx context.Context, p Preferences, onConflict string) error {
	channels, err := json.Marshal(encodeChannels(p.Channels))
	if err != nil {
		return errors.Join(ErrStorage, err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO notification_preferences (user_id, channels, email_enabled, push_enabled,
			quiet_hours_start, quiet_hours_end, timezone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) `+onConflict,
		p.UserID, channels, p.EmailEnabled, p.PushEnabled,
		p.QuietHoursStart, p.QuietHoursEnd, p.Timezone, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}
