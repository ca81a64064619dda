// Package devicetoken keeps the registry of push addresses for user devices.
//
// A token is unique per (user, token) pair. Registering a known token again
// reactivates it and refreshes its last-used time, and a token registered
// with a device ID retires every other active token of that device.
// Tokens are soft-deleted when a provider rejects them, when the user logs
// out, or when they go unused for too long; PruneInactive removes them for
// good once they have been inactive past a retention window.
//
//	registry := devicetoken.NewRegistry(devicetoken.NewPostgresStorage(pool),
//		devicetoken.WithConfig(cfg),
//	)
//	tok, err := registry.Register(ctx, devicetoken.RegisterParams{
//		UserID:   userID,
//		Token:    fcmToken,
//		Platform: devicetoken.PlatformAndroid,
//		DeviceID: installationID,
//	})
//
// Validation failures wrap ErrInvalidTokenFormat and carry
// validator.ValidationErrors with per-field details.
package devicetoken
