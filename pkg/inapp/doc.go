// Package inapp implements the in-app notification channel.
//
// The notification row itself is the in-app inbox, so Sender.Send always
// reports success with a fresh delivery id. When a Hub is attached, the
// event is also pushed to the user's live sessions (SSE, websockets) as a
// best-effort hint to refresh.
//
//	hub := inapp.NewHub(inapp.DefaultBufferSize)
//	defer hub.Close()
//
//	sender := inapp.NewSender(hub)
//
//	sub := hub.Subscribe(r.Context(), userID)
//	for ev := range sub.Events() {
//	    // write ev to the client
//	}
//
// Subscribers that fall behind lose events instead of blocking Publish.
package inapp
