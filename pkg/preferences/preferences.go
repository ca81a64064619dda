package preferences

import (
	"slices"
	"strconv"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// DefaultTimezone applies when a user has not set a timezone.
const DefaultTimezone = "UTC"

// Preferences are one user's delivery settings.
type Preferences struct {
	UserID          string                                              `json:"user_id"`
	Channels        map[notifications.EventType][]notifications.Channel `json:"channels"`
	EmailEnabled    bool                                                `json:"email_enabled"`
	PushEnabled     bool                                                `json:"push_enabled"`
	QuietHoursStart string                                              `json:"quiet_hours_start,omitempty"` // "HH:MM", empty when unset
	QuietHoursEnd   string                                              `json:"quiet_hours_end,omitempty"`   // "HH:MM", empty when unset
	Timezone        string                                              `json:"timezone"`
	CreatedAt       time.Time                                           `json:"created_at"`
	UpdatedAt       time.Time                                           `json:"updated_at"`
}

// New returns the preferences a user starts with.
func New(userID string, defaults Defaults, now time.Time) Preferences {
	return Preferences{
		UserID:       userID,
		Channels:     defaults.clone(),
		EmailEnabled: true,
		PushEnabled:  true,
		Timezone:     DefaultTimezone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// EffectiveChannels returns the channels for t after applying the
// email and push switches. In-app is never filtered.
func (p *Preferences) EffectiveChannels(t notifications.EventType, defaults Defaults) []notifications.Channel {
	chs, ok := p.Channels[t]
	if !ok {
		chs = defaults.For(t)
	}

	out := make([]notifications.Channel, 0, len(chs))
	for _, ch := range notifications.UniqueChannels(chs) {
		switch ch {
		case notifications.ChannelEmail:
			if !p.EmailEnabled {
				continue
			}
		case notifications.ChannelPush:
			if !p.PushEnabled {
				continue
			}
		case notifications.ChannelInApp:
		}
		out = append(out, ch)
	}
	return out
}

// Location returns the user's timezone, falling back to UTC when the stored
// name cannot be loaded.
func (p *Preferences) Location() *time.Location {
	if p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// InQuietHours reports whether now falls inside the user's quiet window.
// Both bounds are inclusive and a window whose start is after its end
// crosses midnight.
func (p *Preferences) InQuietHours(now time.Time) bool {
	start, end, ok := p.window()
	if !ok {
		return false
	}
	local := now.In(p.Location())
	return inWindow(local.Hour()*60+local.Minute(), start, end)
}

// QuietWindowEnd returns the first instant after the quiet window containing
// now. ok is false when now is outside quiet hours.
func (p *Preferences) QuietWindowEnd(now time.Time) (time.Time, bool) {
	start, end, ok := p.window()
	if !ok {
		return time.Time{}, false
	}

	local := now.In(p.Location())
	cur := local.Hour()*60 + local.Minute()
	if !inWindow(cur, start, end) {
		return time.Time{}, false
	}

	day := local
	if start > end && cur >= start {
		day = local.AddDate(0, 0, 1)
	}
	y, m, d := day.Date()
	resume := time.Date(y, m, d, end/60, end%60, 0, 0, local.Location()).Add(time.Minute)
	return resume, true
}

func (p *Preferences) window() (start, end int, ok bool) {
	start, okStart := parseClock(p.QuietHoursStart)
	end, okEnd := parseClock(p.QuietHoursEnd)
	return start, end, okStart && okEnd
}

func inWindow(cur, start, end int) bool {
	if start > end {
		return cur >= start || cur <= end
	}
	return cur >= start && cur <= end
}

// parseClock converts "HH:MM" into minutes after midnight.
func parseClock(s string) (int, bool) {
	if len(s) != 5 || s[2] != ':' {
		return 0, false
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(s[3:])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// Update is a partial change to Preferences. Nil fields are left unchanged;
// Channels replaces only the event types it names.
type Update struct {
	Channels        map[notifications.EventType][]notifications.Channel
	EmailEnabled    *bool
	PushEnabled     *bool
	QuietHoursStart *string // empty string clears the bound
	QuietHoursEnd   *string // empty string clears the bound
	Timezone        *string
}

// apply merges u into p.
func (u Update) apply(p *Preferences, now time.Time) {
	if p.Channels == nil && len(u.Channels) > 0 {
		p.Channels = make(map[notifications.EventType][]notifications.Channel, len(u.Channels))
	}
	for t, chs := range u.Channels {
		p.Channels[t] = notifications.UniqueChannels(slices.Clone(chs))
		if p.Channels[t] == nil {
			p.Channels[t] = []notifications.Channel{}
		}
	}
	if u.EmailEnabled != nil {
		p.EmailEnabled = *u.EmailEnabled
	}
	if u.PushEnabled != nil {
		p.PushEnabled = *u.PushEnabled
	}
	if u.QuietHoursStart != nil {
		p.QuietHoursStart = *u.QuietHoursStart
	}
	if u.QuietHoursEnd != nil {
		p.QuietHoursEnd = *u.QuietHoursEnd
	}
	if u.Timezone != nil {
		p.Timezone = *u.Timezone
	}
	p.UpdatedAt = now
}
