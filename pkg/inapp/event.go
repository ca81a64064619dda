package inapp

import (
	"maps"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// Event is what a live subscriber receives for one notification.
type Event struct {
	DeliveryID     string                  `json:"delivery_id"`
	NotificationID string                  `json:"notification_id"`
	Type           notifications.EventType `json:"type"`
	Title          string                  `json:"title"`
	Body           string                  `json:"body"`
	Data           map[string]string       `json:"data,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
}

// EventFromNotification copies the user-visible fields of n.
func EventFromNotification(n notifications.Notification) Event {
	return Event{
		NotificationID: n.ID,
		Type:           n.Type,
		Title:          n.Title,
		Body:           n.Body,
		Data:           maps.Clone(n.Data),
		CreatedAt:      n.CreatedAt,
	}
}
