// Package notifications creates, delivers and tracks user notifications.
//
// A Notification is addressed to one user and delivered over one or more
// channels (push, email, in-app). The Manager validates a request, selects
// channels from the request or from user preferences, holds push back while
// the user is inside quiet hours and fans the remaining channels out
// concurrently through ChannelSender implementations. The notification is
// stored as sent when at least one channel succeeded and as failed otherwise.
//
// Lifecycle:
//
//	pending -> sent -> read
//	pending -> failed
//
// Read is only reachable from sent, and marking a read notification read
// again is a no-op.
//
// Storage has in-memory and PostgreSQL implementations. Notifications with a
// future ScheduledAt stay pending until a scheduler calls Manager.Dispatch
// for them.
//
// Basic usage:
//
//	storage := notifications.NewPostgresStorage(pool)
//	manager := notifications.NewManager(storage, resolver,
//		[]notifications.ChannelSender{pushSender, emailNotifier, inAppSender},
//		notifications.WithLogger(log),
//	)
//
//	res, err := manager.CreateAndSend(ctx, notifications.SendRequest{
//		UserID: userID,
//		Type:   notifications.EventExportReady,
//		Title:  "Your export is ready",
//		Body:   "Download it from the archive page",
//	})
package notifications
