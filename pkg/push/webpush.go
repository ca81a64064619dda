package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/dmitrymomot/notifykit/pkg/devicetoken"
)

// WebPushConfig holds VAPID credentials for browser push.
type WebPushConfig struct {
	VAPIDPublicKey  string `env:"WEBPUSH_VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `env:"WEBPUSH_VAPID_PRIVATE_KEY"`
	Subscriber      string `env:"WEBPUSH_SUBSCRIBER" envDefault:"mailto:notifications@localhost"`
	TTL             int    `env:"WEBPUSH_TTL" envDefault:"86400"`
	Concurrency     int    `env:"WEBPUSH_CONCURRENCY" envDefault:"10"`
}

// Enabled reports whether VAPID keys are configured.
func (c WebPushConfig) Enabled() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}

// WebPushProvider delivers to browser subscriptions. A web token is the
// JSON-encoded PushSubscription the browser returned.
type WebPushProvider struct {
	cfg    WebPushConfig
	client webpush.HTTPClient
}

// WebPushOption configures a WebPushProvider.
type WebPushOption func(*WebPushProvider)

// WithWebPushHTTPClient replaces the HTTP client used for push service requests.
func WithWebPushHTTPClient(c webpush.HTTPClient) WebPushOption {
	return func(p *WebPushProvider) {
		if c != nil {
			p.client = c
		}
	}
}

// NewWebPushProvider creates a web push provider. VAPID keys are required.
func NewWebPushProvider(cfg WebPushConfig, opts ...WebPushOption) (*WebPushProvider, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("%w: VAPID keys are empty", ErrMissingConfig)
	}
	p := &WebPushProvider{cfg: cfg, client: http.DefaultClient}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

type webPushPayload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

func (p *WebPushProvider) SendMulticast(ctx context.Context, tokens []devicetoken.DeviceToken, msg Message) ([]TokenResult, error) {
	body, err := json.Marshal(webPushPayload(msg))
	if err != nil {
		return nil, err
	}
	return fanout(ctx, tokens, p.cfg.Concurrency, func(ctx context.Context, tok devicetoken.DeviceToken) (string, error) {
		// webpush-go appends padding into the slice's spare capacity
		return p.send(ctx, tok, bytes.Clone(body))
	}), nil
}

// Validate checks that the token is a well-formed subscription. Browser
// push services offer no dry run, so delivery problems surface on send.
func (p *WebPushProvider) Validate(_ context.Context, tok devicetoken.DeviceToken) error {
	_, err := ParseSubscription(tok.Token)
	return err
}

func (p *WebPushProvider) send(ctx context.Context, tok devicetoken.DeviceToken, body []byte) (string, error) {
	sub, err := ParseSubscription(tok.Token)
	if err != nil {
		return "", err
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, sub, &webpush.Options{
		HTTPClient:      p.client,
		Subscriber:      p.cfg.Subscriber,
		TTL:             p.cfg.TTL,
		Urgency:         webpush.UrgencyHigh,
		VAPIDPublicKey:  p.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: p.cfg.VAPIDPrivateKey,
	})
	if err != nil {
		return "", errors.Join(ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return "", fmt.Errorf("%w: push service returned %d", ErrTokenInvalid, resp.StatusCode)
	case resp.StatusCode >= 400:
		return "", fmt.Errorf("%w: push service returned %d", ErrProviderFailure, resp.StatusCode)
	}
	return resp.Header.Get("Location"), nil
}

// ParseSubscription decodes a web token. Malformed tokens can never be
// delivered and are reported as invalid.
func ParseSubscription(token string) (*webpush.Subscription, error) {
	var sub webpush.Subscription
	if err := json.Unmarshal([]byte(token), &sub); err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrTokenInvalid, ErrMalformedToken, err)
	}
	if !strings.HasPrefix(sub.Endpoint, "https://") && !strings.HasPrefix(sub.Endpoint, "http://") {
		return nil, fmt.Errorf("%w: %w: endpoint must be an http(s) URL", ErrTokenInvalid, ErrMalformedToken)
	}
	if sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
		return nil, fmt.Errorf("%w: %w: subscription keys are missing", ErrTokenInvalid, ErrMalformedToken)
	}
	return &sub, nil
}
