package push

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/devicetoken"
	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// DevProvider logs messages instead of sending them. Every token succeeds.
type DevProvider struct {
	logger *slog.Logger
}

// NewDevProvider creates a provider for local development.
func NewDevProvider(l *slog.Logger) *DevProvider {
	if l == nil {
		l = slog.Default()
	}
	return &DevProvider{logger: l}
}

func (p *DevProvider) SendMulticast(ctx context.Context, tokens []devicetoken.DeviceToken, msg Message) ([]TokenResult, error) {
	results := make([]TokenResult, len(tokens))
	for i, tok := range tokens {
		id := "dev-" + uuid.NewString()
		p.logger.LogAttrs(ctx, slog.LevelInfo, "push message",
			logger.Platform(tok.Platform.String()),
			logger.Token(tok.Token),
			logger.MessageID(id),
			slog.String("title", msg.Title),
			slog.String("body", msg.Body),
		)
		results[i] = TokenResult{Token: tok.Token, MessageID: id}
	}
	return results, nil
}

func (p *DevProvider) Validate(context.Context, devicetoken.DeviceToken) error {
	return nil
}
