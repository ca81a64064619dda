package devicetoken

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/notifykit/pkg/pg"
)

// PostgresStorage stores tokens in the device_tokens table.
type PostgresStorage struct {
	db pg.DB
}

// NewPostgresStorage creates a Storage backed by db.
func NewPostgresStorage(db pg.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

const tokenColumns = `id, user_id, token, platform, device_id, is_active, last_used_at, created_at, updated_at`

// Upsert runs the same-device deactivation and the insert as one statement.
func (s *PostgresStorage) Upsert(ctx context.Context, t DeviceToken) (*DeviceToken, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	row := s.db.QueryRow(ctx, `
		WITH replaced AS (
			UPDATE device_tokens SET is_active = FALSE, updated_at = $8
			WHERE $5 <> '' AND user_id = $2 AND device_id = $5 AND token <> $3 AND is_active
		)
		INSERT INTO device_tokens (id, user_id, token, platform, device_id, is_active, last_used_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6, $7, $8)
		ON CONFLICT (user_id, token) DO UPDATE SET
			platform     = EXCLUDED.platform,
			device_id    = COALESCE(NULLIF(EXCLUDED.device_id, ''), device_tokens.device_id),
			is_active    = TRUE,
			last_used_at = EXCLUDED.last_used_at,
			updated_at   = EXCLUDED.updated_at
		RETURNING `+tokenColumns,
		t.ID, t.UserID, t.Token, string(t.Platform), t.DeviceID, t.LastUsedAt, t.CreatedAt, t.UpdatedAt,
	)
	out, err := scanToken(row)
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	return out, nil
}

func (s *PostgresStorage) ListActive(ctx context.Context, userID string, platform *Platform) ([]DeviceToken, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+tokenColumns+` FROM device_tokens
		WHERE user_id = $1 AND is_active AND ($2::text IS NULL OR platform = $2)
		ORDER BY last_used_at DESC`, userID, platformArg(platform))
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	return collectTokens(rows)
}

func (s *PostgresStorage) ListActiveForUsers(ctx context.Context, userIDs []string) ([]DeviceToken, error) {
	if len(userIDs) == 0 {
		return []DeviceToken{}, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT `+tokenColumns+` FROM device_tokens
		WHERE user_id = ANY($1) AND is_active
		ORDER BY user_id, last_used_at DESC`, userIDs)
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	return collectTokens(rows)
}

func (s *PostgresStorage) ListAllActive(ctx context.Context, afterID string, limit int) ([]DeviceToken, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+tokenColumns+` FROM device_tokens
		WHERE is_active AND id > $1
		ORDER BY id
		LIMIT $2`, afterID, limit)
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	return collectTokens(rows)
}

func (s *PostgresStorage) Deactivate(ctx context.Context, tokens []string, at time.Time) (int, error) {
	if len(tokens) == 0 {
		return 0, nil
	}
	return s.exec(ctx, `
		UPDATE device_tokens SET is_active = FALSE, updated_at = $2
		WHERE token = ANY($1) AND is_active`, tokens, at)
}

func (s *PostgresStorage) DeactivateUser(ctx context.Context, userID string, platform *Platform, at time.Time) (int, error) {
	return s.exec(ctx, `
		UPDATE device_tokens SET is_active = FALSE, updated_at = $3
		WHERE user_id = $1 AND is_active AND ($2::text IS NULL OR platform = $2)`,
		userID, platformArg(platform), at)
}

func (s *PostgresStorage) DeactivateStale(ctx context.Context, before, at time.Time) (int, error) {
	return s.exec(ctx, `
		UPDATE device_tokens SET is_active = FALSE, updated_at = $2
		WHERE is_active AND last_used_at < $1`, before, at)
}

func (s *PostgresStorage) DeleteInactive(ctx context.Context, before time.Time) (int, error) {
	return s.exec(ctx, `DELETE FROM device_tokens WHERE NOT is_active AND updated_at < $1`, before)
}

func (s *PostgresStorage) exec(ctx context.Context, sql string, args ...any) (int, error) {
	ct, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, errors.Join(ErrStorage, err)
	}
	return int(ct.RowsAffected()), nil
}

func platformArg(p *Platform) any {
	if p == nil {
		return nil
	}
	return string(*p)
}

func scanToken(row pgx.Row) (*DeviceToken, error) {
	var (
		t        DeviceToken
		platform string
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Token, &platform, &t.DeviceID, &t.IsActive,
		&t.LastUsedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Platform = Platform(platform)
	return &t, nil
}

func collectTokens(rows pgx.Rows) ([]DeviceToken, error) {
	defer rows.Close()

	out := []DeviceToken{}
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, errors.Join(ErrStorage, err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	return out, nil
}
