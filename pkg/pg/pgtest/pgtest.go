// Package pgtest provides a migrated PostgreSQL pool for integration tests.
package pgtest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/pg"
)

// EnvURL names the variable holding the test database connection string.
const EnvURL = "TEST_PG_URL"

// Pool connects to the database named by TEST_PG_URL, applies migrations and
// truncates the given tables. The test is skipped when the variable is unset.
func Pool(t *testing.T, truncate ...string) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv(EnvURL)
	if url == "" {
		t.Skipf("%s is not set", EnvURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := pg.Config{
		ConnectionString: url,
		MaxOpenConns:     4,
		RetryAttempts:    1,
		MigrationsTable:  "notifykit_test_migrations",
	}
	pool, err := pg.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pg.Migrate(ctx, pool, cfg, logger.Noop()))

	for _, table := range truncate {
		_, err := pool.Exec(ctx, "TRUNCATE TABLE "+table)
		require.NoError(t, err)
	}
	return pool
}
