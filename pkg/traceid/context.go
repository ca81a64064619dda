package traceid

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

// New returns a fresh trace ID.
func New() string { return uuid.NewString() }

func WithContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, ok := ctx.Value(contextKey{}).(string)
	if !ok {
		return ""
	}
	return id
}

// Ensure returns ctx unchanged when it already carries a trace ID and a
// derived context with a new one otherwise.
func Ensure(ctx context.Context) (context.Context, string) {
	if id := FromContext(ctx); id != "" {
		return ctx, id
	}
	id := New()
	return WithContext(ctx, id), id
}
