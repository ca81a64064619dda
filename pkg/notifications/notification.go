package notifications

import (
	"slices"
	"time"
)

// Notification is one delivery intent addressed to a single user.
type Notification struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	Type        EventType         `json:"type"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	Data        map[string]string `json:"data,omitempty"`
	Channels    []Channel         `json:"channels"`
	Status      Status            `json:"status"`
	ScheduledAt *time.Time        `json:"scheduled_at,omitempty"`
	SentAt      *time.Time        `json:"sent_at,omitempty"`
	ReadAt      *time.Time        `json:"read_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// HasChannel reports whether c is among the notification's channels.
func (n *Notification) HasChannel(c Channel) bool {
	return slices.Contains(n.Channels, c)
}

// Due reports whether the notification may be dispatched at now.
func (n *Notification) Due(now time.Time) bool {
	return n.ScheduledAt == nil || !n.ScheduledAt.After(now)
}

// DeliveryResult is the outcome of one channel send attempt.
type DeliveryResult struct {
	Channel           Channel `json:"channel"`
	Success           bool    `json:"success"`
	Error             string  `json:"error,omitempty"`
	ProviderMessageID string  `json:"provider_message_id,omitempty"`
}

// Succeeded builds a successful result for channel.
func Succeeded(channel Channel, messageID string) DeliveryResult {
	return DeliveryResult{Channel: channel, Success: true, ProviderMessageID: messageID}
}

// Failed builds a failed result for channel carrying err's message.
func Failed(channel Channel, err error) DeliveryResult {
	r := DeliveryResult{Channel: channel}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// Aggregate folds per-channel results into the notification status.
// Any success means sent; otherwise, including no attempts, it is failed.
func Aggregate(results []DeliveryResult) Status {
	for _, r := range results {
		if r.Success {
			return StatusSent
		}
	}
	return StatusFailed
}
