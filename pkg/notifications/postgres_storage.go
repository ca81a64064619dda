package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/notifykit/pkg/pg"
)

// PostgresStorage stores notifications in the notifications table.
type PostgresStorage struct {
	db pg.DB
}

// NewPostgresStorage creates a Storage backed by db.
func NewPostgresStorage(db pg.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

const notificationColumns = `id, user_id, type, title, body, data, channels, status,
	scheduled_at, sent_at, read_at, created_at, updated_at`

func (s *PostgresStorage) Create(ctx context.Context, n Notification) error {
	data, err := json.Marshal(dataOrEmpty(n.Data))
	if err != nil {
		return errors.Join(ErrStorage, err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		n.ID, n.UserID, string(n.Type), n.Title, n.Body, data, channelStrings(n.Channels), string(n.Status),
		n.ScheduledAt, n.SentAt, n.ReadAt, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (s *PostgresStorage) Get(ctx context.Context, id string) (*Notification, error) {
	row := s.db.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	n, err := scanNotification(row)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotificationNotFound
		}
		return nil, errors.Join(ErrStorage, err)
	}
	return n, nil
}

func (s *PostgresStorage) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	var limit any
	if opts.Limit > 0 {
		limit = opts.Limit
	}

	rows, err := s.db.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE user_id = $1
		  AND ($2::text[] IS NULL OR status = ANY($2))
		  AND ($3::text[] IS NULL OR type = ANY($3))
		ORDER BY created_at DESC, id DESC
		LIMIT $4 OFFSET $5`,
		userID, statusStrings(opts.Status), typeStrings(opts.Types), limit, opts.Offset,
	)
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	return collectNotifications(rows)
}

func (s *PostgresStorage) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT count(*) FROM notifications WHERE user_id = $1 AND status = 'sent'`, userID,
	).Scan(&count)
	if err != nil {
		return 0, errors.Join(ErrStorage, err)
	}
	return count, nil
}

func (s *PostgresStorage) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	ct, err := s.db.Exec(ctx, `
		UPDATE notifications SET status = 'sent', sent_at = $2, updated_at = $2
		WHERE id = $1 AND status = 'pending'`, id, sentAt)
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	if ct.RowsAffected() == 0 {
		return s.missingOrInvalid(ctx, id)
	}
	return nil
}

func (s *PostgresStorage) MarkFailed(ctx context.Context, id string, at time.Time) error {
	ct, err := s.db.Exec(ctx, `
		UPDATE notifications SET status = 'failed', updated_at = $2
		WHERE id = $1 AND status = 'pending'`, id, at)
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	if ct.RowsAffected() == 0 {
		return s.missingOrInvalid(ctx, id)
	}
	return nil
}

func (s *PostgresStorage) MarkRead(ctx context.Context, id string, readAt time.Time) (bool, error) {
	ct, err := s.db.Exec(ctx, `
		UPDATE notifications SET status = 'read', read_at = $2, updated_at = $2
		WHERE id = $1 AND status = 'sent'`, id, readAt)
	if err != nil {
		return false, errors.Join(ErrStorage, err)
	}
	return ct.RowsAffected() > 0, nil
}

func (s *PostgresStorage) MarkAllRead(ctx context.Context, userID string, readAt time.Time) (int, error) {
	ct, err := s.db.Exec(ctx, `
		UPDATE notifications SET status = 'read', read_at = $2, updated_at = $2
		WHERE user_id = $1 AND status = 'sent'`, userID, readAt)
	if err != nil {
		return 0, errors.Join(ErrStorage, err)
	}
	return int(ct.RowsAffected()), nil
}

func (s *PostgresStorage) ListDue(ctx context.Context, now time.Time, limit int) ([]Notification, error) {
	if limit <= 0 {
		return []Notification{}, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE status = 'pending' AND (scheduled_at IS NULL OR scheduled_at <= $1)
		ORDER BY created_at ASC
		LIMIT $2`, now, limit)
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	return collectNotifications(rows)
}

func (s *PostgresStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	ct, err := s.db.Exec(ctx, `DELETE FROM notifications WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, errors.Join(ErrStorage, err)
	}
	return int(ct.RowsAffected()), nil
}

func (s *PostgresStorage) missingOrInvalid(ctx context.Context, id string) error {
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM notifications WHERE id = $1)`, id).Scan(&exists); err != nil {
		return errors.Join(ErrStorage, err)
	}
	if !exists {
		return ErrNotificationNotFound
	}
	return ErrInvalidTransition
}

func scanNotification(row pgx.Row) (*Notification, error) {
	var (
		n        Notification
		typ      string
		status   string
		data     []byte
		channels []string
	)
	err := row.Scan(
		&n.ID, &n.UserID, &typ, &n.Title, &n.Body, &data, &channels, &status,
		&n.ScheduledAt, &n.SentAt, &n.ReadAt, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	n.Type = EventType(typ)
	n.Status = Status(status)
	n.Channels = make([]Channel, 0, len(channels))
	for _, c := range channels {
		n.Channels = append(n.Channels, Channel(c))
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &n.Data); err != nil {
			return nil, err
		}
	}
	if len(n.Data) == 0 {
		n.Data = nil
	}
	return &n, nil
}

func collectNotifications(rows pgx.Rows) ([]Notification, error) {
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, errors.Join(ErrStorage, err)
		}
		out = append(out, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	return out, nil
}

func dataOrEmpty(d map[string]string) map[string]string {
	if d == nil {
		return map[string]string{}
	}
	return d
}

func channelStrings(cs []Channel) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}

func statusStrings(ss []Status) []string {
	if len(ss) == 0 {
		return nil
	}
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = string(s)
	}
	return out
}

func typeStrings(ts []EventType) []string {
	if len(ts) == 0 {
		return nil
	}
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = string(t)
	}
	return out
}
