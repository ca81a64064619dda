package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const probeTimeout = 2 * time.Second

// Healthcheck returns a readiness probe. It acquires a pooled connection and
// pings it, so an exhausted pool reports not ready instead of blocking.
func Healthcheck(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()

		conn, err := pool.Acquire(ctx)
		if err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		defer conn.Release()

		if err := conn.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
