package push

import (
	"context"
	"errors"
	"maps"

	"github.com/dmitrymomot/notifykit/pkg/devicetoken"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// Message is the provider-neutral push payload.
type Message struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// MessageFromNotification builds the push payload for n. The notification
// id and event type are added to Data so clients can deep-link.
func MessageFromNotification(n notifications.Notification) Message {
	data := maps.Clone(n.Data)
	if data == nil {
		data = make(map[string]string, 2)
	}
	data["notification_id"] = n.ID
	data["type"] = n.Type.String()
	return Message{Title: n.Title, Body: n.Body, Data: data}
}

// Provider delivers messages to device tokens.
type Provider interface {
	// SendMulticast sends msg to every token. The returned results are
	// index-aligned with tokens. A non-nil error means no token was attempted.
	SendMulticast(ctx context.Context, tokens []devicetoken.DeviceToken, msg Message) ([]TokenResult, error)

	// Validate performs a dry-run delivery. It returns an error wrapping
	// ErrTokenInvalid for tokens the provider rejects permanently.
	Validate(ctx context.Context, token devicetoken.DeviceToken) error
}

// TokenResult is the outcome of delivering to one token.
type TokenResult struct {
	Token     string
	MessageID string
	Err       error
}

// Invalid reports whether the provider rejected the token permanently.
func (r TokenResult) Invalid() bool {
	return errors.Is(r.Err, ErrTokenInvalid)
}
