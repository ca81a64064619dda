package inapp_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/inapp"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

func TestSender_Send(t *testing.T) {
	t.Parallel()

	n := notifications.Notification{
		ID:     "n1",
		UserID: "u1",
		Type:   notifications.EventInteractionAdded,
		Title:  "New comment",
		Body:   "Someone replied",
		Data:   map[string]string{"story_id": "s1"},
	}

	t.Run("without publisher", func(t *testing.T) {
		t.Parallel()

		s := inapp.NewSender(nil, inapp.WithLogger(logger.Noop()))
		assert.Equal(t, notifications.ChannelInApp, s.Channel())

		res := s.Send(context.Background(), n)
		assert.True(t, res.Success)
		assert.Equal(t, notifications.ChannelInApp, res.Channel)
		_, err := uuid.Parse(res.ProviderMessageID)
		assert.NoError(t, err)
	})

	t.Run("publishes to live sessions", func(t *testing.T) {
		t.Parallel()

		hub := inapp.NewHub(4)
		defer hub.Close()
		sub := hub.Subscribe(context.Background(), "u1")

		s := inapp.NewSender(hub, inapp.WithLogger(logger.Noop()))
		res := s.Send(context.Background(), n)
		require.True(t, res.Success)

		select {
		case ev := <-sub.Events():
			assert.Equal(t, res.ProviderMessageID, ev.DeliveryID)
			assert.Equal(t, "n1", ev.NotificationID)
			assert.Equal(t, notifications.EventInteractionAdded, ev.Type)
			assert.Equal(t, "s1", ev.Data["story_id"])
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	})

	t.Run("distinct ids per send", func(t *testing.T) {
		t.Parallel()

		s := inapp.NewSender(nil, inapp.WithLogger(logger.Noop()))
		first := s.Send(context.Background(), n)
		second := s.Send(context.Background(), n)
		assert.NotEqual(t, first.ProviderMessageID, second.ProviderMessageID)
	})
}
