// Package mongo manages the MongoDB client used by the optional document
// backend for notification preferences.
//
// Configuration is environment driven (MONGODB_* variables, see Config).
// An empty MONGODB_URL disables MongoDB entirely and callers fall back to
// PostgreSQL storage.
//
//	cfg := mongo.Config{ConnectionURL: "mongodb://localhost:27017", RetryAttempts: 3}
//
//	db, err := mongo.NewWithDatabase(ctx, cfg, cfg.Database)
//	if err != nil {
//		return err
//	}
//	defer db.Client().Disconnect(context.Background())
//
//	store := preferences.NewMongoStorage(db)
//	ready := mongo.Healthcheck(db.Client())
//
// New retries the initial connect and ping, waiting RetryInterval between
// attempts and giving up early when ctx is done. Failures are joined with
// ErrFailedToConnectToMongo so callers can use errors.Is.
package mongo
