package preferences

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// Defaults maps an event type to the channels used when the user has not
// chosen any.
type Defaults map[notifications.EventType][]notifications.Channel

// FallbackChannels are used for event types without a configured default.
var FallbackChannels = []notifications.Channel{notifications.ChannelPush}

// DefaultChannels returns the built-in defaults: processing updates go to
// push only, everything else to push and email.
func DefaultChannels() Defaults {
	pushEmail := []notifications.Channel{notifications.ChannelPush, notifications.ChannelEmail}
	d := make(Defaults, len(notifications.AllEventTypes()))
	for _, t := range notifications.AllEventTypes() {
		d[t] = slices.Clone(pushEmail)
	}
	d[notifications.EventStoryProcessingComplete] = []notifications.Channel{notifications.ChannelPush}
	return d
}

// For returns the default channels for t, or FallbackChannels.
func (d Defaults) For(t notifications.EventType) []notifications.Channel {
	if chs, ok := d[t]; ok {
		return slices.Clone(chs)
	}
	return slices.Clone(FallbackChannels)
}

func (d Defaults) clone() Defaults {
	out := make(Defaults, len(d))
	for t, chs := range d {
		out[t] = slices.Clone(chs)
	}
	return out
}

// LoadDefaults reads a YAML document mapping event types to channel lists
// and merges it over DefaultChannels:
//
//	story_uploaded: [push, email, in_app]
//	export_ready: [email]
func LoadDefaults(r io.Reader) (Defaults, error) {
	var raw map[string][]string
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Join(ErrInvalidDefaults, err)
	}

	out := DefaultChannels()
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		t, err := notifications.ParseEventType(key)
		if err != nil {
			return nil, errors.Join(ErrInvalidDefaults, err)
		}
		chs := make([]notifications.Channel, 0, len(raw[key]))
		for _, name := range raw[key] {
			ch, err := notifications.ParseChannel(name)
			if err != nil {
				return nil, errors.Join(ErrInvalidDefaults, fmt.Errorf("%s: %w", key, err))
			}
			chs = append(chs, ch)
		}
		out[t] = notifications.UniqueChannels(chs)
	}
	return out, nil
}
