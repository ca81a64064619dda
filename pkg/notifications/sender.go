package notifications

import "context"

// ChannelSender delivers a notification over one channel.
// Delivery problems are reported in the result, never as a panic or error.
type ChannelSender interface {
	Channel() Channel
	Send(ctx context.Context, notif Notification) DeliveryResult
}

// SenderFunc adapts a function to ChannelSender.
type SenderFunc struct {
	Ch Channel
	Fn func(ctx context.Context, notif Notification) DeliveryResult
}

func (s SenderFunc) Channel() Channel { return s.Ch }

func (s SenderFunc) Send(ctx context.Context, notif Notification) DeliveryResult {
	return s.Fn(ctx, notif)
}
