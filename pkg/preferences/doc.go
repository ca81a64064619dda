// Package preferences stores per-user notification settings and answers the
// questions the notification Manager asks before delivering: which channels
// a user receives an event type on, and whether push is currently held back
// by quiet hours.
//
// Preferences are created lazily with defaults on first access. Channel
// lists are configured per event type; the email and push switches filter
// them, while in-app delivery is never filtered. Event types without a list
// fall back to push.
//
// Quiet hours are two "HH:MM" bounds evaluated in the user's IANA timezone.
// Both bounds are inclusive, and a start later than the end describes a
// window that crosses midnight. An unset bound disables quiet hours.
//
//	resolver := preferences.NewResolver(preferences.NewPostgresStorage(pool))
//	_, err := resolver.Update(ctx, userID, preferences.Update{
//		QuietHoursStart: ptr("22:00"),
//		QuietHoursEnd:   ptr("07:00"),
//		Timezone:        ptr("Europe/Berlin"),
//	})
//
// Storage implementations exist for memory, PostgreSQL and MongoDB.
// LoadDefaults reads per-event channel defaults from YAML.
package preferences
