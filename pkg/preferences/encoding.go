package preferences

import "github.com/dmitrymomot/notifykit/pkg/notifications"

// Channel maps are stored with plain string keys and values.

func encodeChannels(m map[notifications.EventType][]notifications.Channel) map[string][]string {
	out := make(map[string][]string, len(m))
	for t, chs := range m {
		names := make([]string, len(chs))
		for i, ch := range chs {
			names[i] = ch.String()
		}
		out[t.String()] = names
	}
	return out
}

// decodeChannels drops entries whose event type or channel is no longer known.
func decodeChannels(m map[string][]string) map[notifications.EventType][]notifications.Channel {
	out := make(map[notifications.EventType][]notifications.Channel, len(m))
	for key, names := range m {
		t, err := notifications.ParseEventType(key)
		if err != nil {
			continue
		}
		chs := make([]notifications.Channel, 0, len(names))
		for _, name := range names {
			if ch, err := notifications.ParseChannel(name); err == nil {
				chs = append(chs, ch)
			}
		}
		out[t] = chs
	}
	return out
}
