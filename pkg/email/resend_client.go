package email

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/resend/resend-go/v2"
)

type resendClient struct {
	client *resend.Client
	config Config
}

// ResendOption tunes the underlying Resend API client.
type ResendOption func(*resend.Client) error

// WithResendBaseURL points the client at a different API root.
func WithResendBaseURL(raw string) ResendOption {
	return func(c *resend.Client) error {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%w: invalid Resend base url: %v", ErrInvalidConfig, err)
		}
		c.BaseURL = u
		return nil
	}
}

// NewResendClient creates a Resend-backed email sender.
func NewResendClient(cfg Config, opts ...ResendOption) (EmailSender, error) {
	if cfg.ResendAPIKey == "" {
		return nil, fmt.Errorf("%w: ResendAPIKey is required", ErrInvalidConfig)
	}
	if err := cfg.validateIdentity(); err != nil {
		return nil, err
	}

	client := resend.NewClient(cfg.ResendAPIKey)
	for _, opt := range opts {
		if err := opt(client); err != nil {
			return nil, err
		}
	}

	return &resendClient{client: client, config: cfg}, nil
}

// SendEmail implements EmailSender using the Resend emails API.
func (c *resendClient) SendEmail(ctx context.Context, params SendEmailParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	req := &resend.SendEmailRequest{
		From:    c.config.SenderEmail,
		To:      []string{params.SendTo},
		Subject: params.Subject,
		Html:    params.BodyHTML,
		Text:    params.BodyText,
		ReplyTo: c.config.SupportEmail,
	}
	if params.Tag != "" {
		req.Tags = []resend.Tag{{Name: "category", Value: params.Tag}}
	}

	resp, err := c.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return "", errors.Join(ErrFailedToSendEmail, err)
	}
	return resp.Id, nil
}
