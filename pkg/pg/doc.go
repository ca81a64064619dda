// Package pg bootstraps the PostgreSQL layer used by notifykit storages.
//
// Connect opens a *pgxpool.Pool from Config with retries, Migrate applies the
// embedded goose migrations that create the notifications,
// notification_preferences and device_tokens tables, and Healthcheck exposes
// a readiness probe. DB is the minimal query interface accepted by the
// Postgres-backed storages in other packages.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//	    return err
//	}
//
//	store := notifications.NewPostgresStorage(pool)
package pg
