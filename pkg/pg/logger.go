package pg

import "context"

// logger is what Migrate needs from *slog.Logger. goose output is routed
// through it by gooseLogger.
type logger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}
