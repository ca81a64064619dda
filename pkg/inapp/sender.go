package inapp

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// Publisher pushes an event to a user's live sessions. Hub implements it.
type Publisher interface {
	Publish(ctx context.Context, userID string, ev Event) int
}

// Sender is the in-app channel. The stored notification is the durable
// delivery; live publishing is best effort, so Send always succeeds.
type Sender struct {
	publisher Publisher
	logger    *slog.Logger
}

// SenderOption configures a Sender.
type SenderOption func(*Sender)

// WithLogger sets the logger for the Sender.
func WithLogger(l *slog.Logger) SenderOption {
	return func(s *Sender) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSender creates an in-app Sender. publisher may be nil.
func NewSender(publisher Publisher, opts ...SenderOption) *Sender {
	s := &Sender{publisher: publisher, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ notifications.ChannelSender = (*Sender)(nil)

func (s *Sender) Channel() notifications.Channel { return notifications.ChannelInApp }

func (s *Sender) Send(ctx context.Context, n notifications.Notification) notifications.DeliveryResult {
	id := uuid.NewString()

	if s.publisher != nil {
		ev := EventFromNotification(n)
		ev.DeliveryID = id
		live := s.publisher.Publish(ctx, n.UserID, ev)
		s.logger.LogAttrs(ctx, slog.LevelDebug, "in-app notification published",
			logger.NotificationID(n.ID),
			logger.UserID(n.UserID),
			logger.Count(live),
		)
	}

	return notifications.Succeeded(notifications.ChannelInApp, id)
}
