package email

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrymomot/notifykit/pkg/pg"
)

// AddressBook resolves a user's email address.
// Implementations return ErrNoAddress when the user has none.
type AddressBook interface {
	EmailAddress(ctx context.Context, userID string) (string, error)
}

// StaticAddressBook is an in-memory AddressBook keyed by user id.
type StaticAddressBook map[string]string

func (b StaticAddressBook) EmailAddress(_ context.Context, userID string) (string, error) {
	addr := strings.TrimSpace(b[userID])
	if addr == "" {
		return "", ErrNoAddress
	}
	return addr, nil
}

// DefaultAddressQuery reads the address from a users table owned by the host application.
const DefaultAddressQuery = `SELECT email FROM users WHERE id = $1`

// PostgresAddressBook looks addresses up with a single-row query.
type PostgresAddressBook struct {
	db    pg.DB
	query string
}

// NewPostgresAddressBook creates an AddressBook backed by db. The query must
// take the user id as $1 and return one text column; empty uses DefaultAddressQuery.
func NewPostgresAddressBook(db pg.DB, query string) *PostgresAddressBook {
	if query == "" {
		query = DefaultAddressQuery
	}
	return &PostgresAddressBook{db: db, query: query}
}

func (b *PostgresAddressBook) EmailAddress(ctx context.Context, userID string) (string, error) {
	var addr *string
	if err := b.db.QueryRow(ctx, b.query, userID).Scan(&addr); err != nil {
		if pg.IsNotFoundError(err) {
			return "", ErrNoAddress
		}
		return "", errors.Join(ErrAddressLookup, err)
	}
	if addr == nil || strings.TrimSpace(*addr) == "" {
		return "", ErrNoAddress
	}
	return strings.TrimSpace(*addr), nil
}
