package email

import (
	"context"
	"html"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

const (
	DefaultBatchSize  = 50
	DefaultBatchDelay = time.Second
)

// Recipient addresses an email either by user id, resolved through the
// AddressBook, or by a literal address. Address wins when both are set.
type Recipient struct {
	UserID  string
	Address string
}

// Content is a rendered email.
type Content struct {
	Subject string
	HTML    string
	Text    string
	Tag     string
}

// BulkMessage pairs a recipient with its content for SendBulk.
type BulkMessage struct {
	Recipient Recipient
	Content   Content
}

// ContentFunc renders a notification into email content.
type ContentFunc func(n notifications.Notification) Content

// DefaultContent uses the title as subject and the escaped body as a single paragraph.
func DefaultContent(n notifications.Notification) Content {
	body := html.EscapeString(n.Body)
	body = strings.ReplaceAll(body, "\n", "<br>")
	return Content{
		Subject: n.Title,
		HTML:    "<p>" + body + "</p>",
		Text:    n.Body,
		Tag:     n.Type.String(),
	}
}

// Notifier delivers notifications over email.
type Notifier struct {
	sender     EmailSender
	book       AddressBook
	render     ContentFunc
	batchSize  int
	batchDelay time.Duration
	logger     *slog.Logger
}

// NotifierOption configures a Notifier.
type NotifierOption func(*Notifier)

// WithBatchSize sets how many bulk messages are sent between pauses.
func WithBatchSize(n int) NotifierOption {
	return func(e *Notifier) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithBatchDelay sets the pause between bulk batches. Zero disables pacing.
func WithBatchDelay(d time.Duration) NotifierOption {
	return func(e *Notifier) {
		if d >= 0 {
			e.batchDelay = d
		}
	}
}

// WithContentFunc replaces DefaultContent.
func WithContentFunc(fn ContentFunc) NotifierOption {
	return func(e *Notifier) {
		if fn != nil {
			e.render = fn
		}
	}
}

// WithLogger sets the logger for the Notifier.
func WithLogger(l *slog.Logger) NotifierOption {
	return func(e *Notifier) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewNotifier creates an email Notifier. book may be nil when every
// recipient carries a literal address.
func NewNotifier(sender EmailSender, book AddressBook, opts ...NotifierOption) *Notifier {
	e := &Notifier{
		sender:     sender,
		book:       book,
		render:     DefaultContent,
		batchSize:  DefaultBatchSize,
		batchDelay: DefaultBatchDelay,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ notifications.ChannelSender = (*Notifier)(nil)

func (e *Notifier) Channel() notifications.Channel { return notifications.ChannelEmail }

// Send renders n and emails it to its user.
func (e *Notifier) Send(ctx context.Context, n notifications.Notification) notifications.DeliveryResult {
	return e.SendTo(ctx, Recipient{UserID: n.UserID}, e.render(n))
}

// SendTo emails content to one recipient. A recipient without an address
// yields a failed result carrying ErrNoAddress.
func (e *Notifier) SendTo(ctx context.Context, r Recipient, c Content) notifications.DeliveryResult {
	addr, err := e.address(ctx, r)
	if err != nil {
		e.logger.LogAttrs(ctx, slog.LevelWarn, "email address lookup failed",
			logger.UserID(r.UserID),
			logger.Error(err),
		)
		return notifications.Failed(notifications.ChannelEmail, err)
	}

	id, err := e.sender.SendEmail(ctx, SendEmailParams{
		SendTo:   addr,
		Subject:  c.Subject,
		BodyHTML: c.HTML,
		BodyText: c.Text,
		Tag:      c.Tag,
	})
	if err != nil {
		e.logger.LogAttrs(ctx, slog.LevelError, "email send failed",
			logger.UserID(r.UserID),
			logger.Error(err),
		)
		return notifications.Failed(notifications.ChannelEmail, err)
	}
	return notifications.Succeeded(notifications.ChannelEmail, id)
}

// SendBulk sends msgs in fixed-size batches, pausing between batches.
// Results are index-aligned with msgs. If ctx ends during a pause the
// remaining messages are reported as failed.
func (e *Notifier) SendBulk(ctx context.Context, msgs []BulkMessage) []notifications.DeliveryResult {
	results := make([]notifications.DeliveryResult, len(msgs))

	for start := 0; start < len(msgs); start += e.batchSize {
		if start > 0 {
			if err := pause(ctx, e.batchDelay); err != nil {
				for i := start; i < len(msgs); i++ {
					results[i] = notifications.Failed(notifications.ChannelEmail, err)
				}
				return results
			}
		}

		end := min(start+e.batchSize, len(msgs))
		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				results[i] = e.SendTo(ctx, msgs[i].Recipient, msgs[i].Content)
				return nil
			})
		}
		_ = g.Wait()
	}

	e.logger.LogAttrs(ctx, slog.LevelDebug, "email bulk send finished",
		logger.Count(len(msgs)),
	)
	return results
}

func (e *Notifier) address(ctx context.Context, r Recipient) (string, error) {
	if addr := strings.TrimSpace(r.Address); addr != "" {
		return addr, nil
	}
	if r.UserID == "" || e.book == nil {
		return "", ErrNoAddress
	}
	return e.book.EmailAddress(ctx, r.UserID)
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
