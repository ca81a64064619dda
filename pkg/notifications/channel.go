package notifications

import "fmt"

// Channel is a delivery mechanism for a notification.
type Channel string

const (
	ChannelPush  Channel = "push"
	ChannelEmail Channel = "email"
	ChannelInApp Channel = "in_app"
)

// AllChannels returns every supported channel.
func AllChannels() []Channel {
	return []Channel{ChannelPush, ChannelEmail, ChannelInApp}
}

func (c Channel) Valid() bool {
	switch c {
	case ChannelPush, ChannelEmail, ChannelInApp:
		return true
	default:
		return false
	}
}

func (c Channel) String() string { return string(c) }

// ParseChannel converts s to a Channel, rejecting unknown names.
func ParseChannel(s string) (Channel, error) {
	c := Channel(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownChannel, s)
	}
	return c, nil
}

// UniqueChannels drops duplicates from channels while keeping first-seen order.
func UniqueChannels(channels []Channel) []Channel {
	if len(channels) == 0 {
		return nil
	}
	seen := make(map[Channel]struct{}, len(channels))
	out := make([]Channel, 0, len(channels))
	for _, c := range channels {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// WithoutChannel returns channels minus every occurrence of drop.
func WithoutChannel(channels []Channel, drop Channel) []Channel {
	out := make([]Channel, 0, len(channels))
	for _, c := range channels {
		if c != drop {
			out = append(out, c)
		}
	}
	return out
}
