package traceid

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// LoggerExtractor adds trace_id to every record logged with a traced context.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := FromContext(ctx); id != "" {
			return slog.String("trace_id", id), true
		}
		return slog.Attr{}, false
	}
}
