package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/dmitrymomot/notifykit/pkg/devicetoken"
)

const fcmScope = "https://www.googleapis.com/auth/firebase.messaging"

// FCMConfig configures the Firebase Cloud Messaging HTTP v1 provider.
type FCMConfig struct {
	ProjectID       string        `env:"FCM_PROJECT_ID"`
	CredentialsFile string        `env:"FCM_CREDENTIALS_FILE"`
	CredentialsJSON string        `env:"FCM_CREDENTIALS_JSON"`
	Endpoint        string        `env:"FCM_ENDPOINT" envDefault:"https://fcm.googleapis.com"`
	Timeout         time.Duration `env:"FCM_TIMEOUT" envDefault:"10s"`
	Concurrency     int           `env:"FCM_CONCURRENCY" envDefault:"10"`
}

// Enabled reports whether service account credentials are configured.
func (c FCMConfig) Enabled() bool {
	return c.CredentialsFile != "" || c.CredentialsJSON != ""
}

// FCMProvider sends to Android and iOS devices through FCM.
type FCMProvider struct {
	cfg    FCMConfig
	client *http.Client
}

// FCMOption configures an FCMProvider.
type FCMOption func(*fcmOptions)

type fcmOptions struct {
	base http.RoundTripper
}

// WithFCMTransport sets the transport beneath the OAuth2 layer.
func WithFCMTransport(rt http.RoundTripper) FCMOption {
	return func(o *fcmOptions) {
		o.base = rt
	}
}

// NewFCMProvider loads service account credentials from the config and
// creates a provider. The project id defaults to the one in the credentials.
func NewFCMProvider(ctx context.Context, cfg FCMConfig, opts ...FCMOption) (*FCMProvider, error) {
	data := []byte(cfg.CredentialsJSON)
	if len(data) == 0 && cfg.CredentialsFile != "" {
		var err error
		if data, err = os.ReadFile(cfg.CredentialsFile); err != nil {
			return nil, errors.Join(ErrMissingConfig, err)
		}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: FCM credentials are empty", ErrMissingConfig)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, fcmScope)
	if err != nil {
		return nil, errors.Join(ErrMissingConfig, err)
	}
	if cfg.ProjectID == "" {
		cfg.ProjectID = creds.ProjectID
	}
	return NewFCMProviderWithTokenSource(cfg, creds.TokenSource, opts...)
}

// NewFCMProviderWithTokenSource creates a provider that authorises
// requests with ts.
func NewFCMProviderWithTokenSource(cfg FCMConfig, ts oauth2.TokenSource, opts ...FCMOption) (*FCMProvider, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("%w: FCM project id is empty", ErrMissingConfig)
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://fcm.googleapis.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	o := fcmOptions{base: http.DefaultTransport}
	for _, opt := range opts {
		opt(&o)
	}

	return &FCMProvider{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &oauth2.Transport{
				Source: oauth2.ReuseTokenSource(nil, ts),
				Base:   o.base,
			},
		},
	}, nil
}

type fcmRequest struct {
	ValidateOnly bool       `json:"validate_only,omitempty"`
	Message      fcmMessage `json:"message"`
}

type fcmMessage struct {
	Token        string            `json:"token"`
	Notification *fcmNotification  `json:"notification,omitempty"`
	Data         map[string]string `json:"data,omitempty"`
	Android      *fcmAndroid       `json:"android,omitempty"`
	APNS         *fcmAPNS          `json:"apns,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
}

type fcmAndroid struct {
	Priority string `json:"priority"`
}

type fcmAPNS struct {
	Headers map[string]string `json:"headers,omitempty"`
	Payload map[string]any    `json:"payload,omitempty"`
}

type fcmResponse struct {
	Name string `json:"name"`
}

type fcmErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Type      string `json:"@type"`
			ErrorCode string `json:"errorCode"`
		} `json:"details"`
	} `json:"error"`
}

func (p *FCMProvider) SendMulticast(ctx context.Context, tokens []devicetoken.DeviceToken, msg Message) ([]TokenResult, error) {
	return fanout(ctx, tokens, p.cfg.Concurrency, func(ctx context.Context, tok devicetoken.DeviceToken) (string, error) {
		return p.send(ctx, buildFCMMessage(tok, msg), false)
	}), nil
}

// Validate sends a validate_only request, which FCM checks without delivering.
func (p *FCMProvider) Validate(ctx context.Context, tok devicetoken.DeviceToken) error {
	_, err := p.send(ctx, buildFCMMessage(tok, Message{}), true)
	return err
}

func buildFCMMessage(tok devicetoken.DeviceToken, msg Message) fcmMessage {
	m := fcmMessage{Token: tok.Token, Data: msg.Data}
	if msg.Title != "" || msg.Body != "" {
		m.Notification = &fcmNotification{Title: msg.Title, Body: msg.Body}
	}
	switch tok.Platform {
	case devicetoken.PlatformAndroid:
		m.Android = &fcmAndroid{Priority: "high"}
	case devicetoken.PlatformIOS:
		m.APNS = &fcmAPNS{
			Headers: map[string]string{"apns-priority": "10"},
			Payload: map[string]any{"aps": map[string]any{"sound": "default"}},
		}
	case devicetoken.PlatformWeb:
	}
	return m
}

func (p *FCMProvider) send(ctx context.Context, m fcmMessage, validateOnly bool) (string, error) {
	body, err := json.Marshal(fcmRequest{ValidateOnly: validateOnly, Message: m})
	if err != nil {
		return "", err
	}

	url := strings.TrimRight(p.cfg.Endpoint, "/") + "/v1/projects/" + p.cfg.ProjectID + "/messages:send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", errors.Join(ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", errors.Join(ErrProviderFailure, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", classifyFCMError(resp.StatusCode, raw)
	}

	var out fcmResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", errors.Join(ErrProviderFailure, err)
	}
	return out.Name, nil
}

// classifyFCMError maps an FCM error body to ErrTokenInvalid for tokens
// that will never be deliverable and to ErrProviderFailure otherwise.
func classifyFCMError(status int, raw []byte) error {
	var e fcmErrorResponse
	_ = json.Unmarshal(raw, &e)

	var code string
	for _, d := range e.Error.Details {
		if d.ErrorCode != "" {
			code = d.ErrorCode
			break
		}
	}

	switch code {
	case "UNREGISTERED", "SENDER_ID_MISMATCH":
		return fmt.Errorf("%w: fcm %s", ErrTokenInvalid, code)
	}
	if e.Error.Status == "INVALID_ARGUMENT" && strings.Contains(strings.ToLower(e.Error.Message), "registration token") {
		return fmt.Errorf("%w: fcm %s", ErrTokenInvalid, e.Error.Message)
	}
	return fmt.Errorf("%w: fcm status %d %s %s", ErrProviderFailure, status, e.Error.Status, code)
}
