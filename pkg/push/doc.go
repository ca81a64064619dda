// Package push delivers notifications to mobile and browser devices.
//
// A Sender resolves a user's active tokens from the device token registry
// and hands them to a Provider in one multicast. Delivery succeeds when at
// least one token accepted the message. Tokens the provider reports as
// permanently invalid (ErrTokenInvalid) are deactivated in the background
// so the send returns without waiting; Wait drains that work.
//
// Providers:
//
//   - FCMProvider talks to the Firebase Cloud Messaging HTTP v1 API using a
//     service account (golang.org/x/oauth2/google) and supports validate-only
//     dry runs.
//   - WebPushProvider sends VAPID-signed, encrypted payloads to browser push
//     services. A web token is the JSON PushSubscription from the browser.
//   - Router picks a provider per platform.
//   - DevProvider logs instead of sending.
//
// CleanupInvalidTokens walks every active token in pages, dry-runs each one
// with bounded retries and deactivates those the provider rejects.
//
//	fcm, err := push.NewFCMProvider(ctx, fcmCfg)
//	provider := push.NewRouter(map[devicetoken.Platform]push.Provider{
//		devicetoken.PlatformAndroid: fcm,
//		devicetoken.PlatformIOS:     fcm,
//		devicetoken.PlatformWeb:     webPush,
//	})
//	sender := push.NewSender(provider, registry, push.WithLogger(log))
package push
