package devicetoken

import "time"

// DeviceToken is a push address registered by a user's device.
type DeviceToken struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Token      string    `json:"token"`
	Platform   Platform  `json:"platform"`
	DeviceID   string    `json:"device_id,omitempty"`
	IsActive   bool      `json:"is_active"`
	LastUsedAt time.Time `json:"last_used_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RegisterParams is the input of Registry.Register.
type RegisterParams struct {
	UserID   string
	Token    string
	Platform Platform
	DeviceID string // optional; registering replaces other tokens of the same device
}

// Tokens returns the raw token strings of ts.
func Tokens(ts []DeviceToken) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Token
	}
	return out
}
