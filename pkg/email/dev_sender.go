package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

const maxFilenameLength = 100

// DevSender writes each email to disk instead of delivering it: the HTML
// body as <name>.html and everything else as <name>.json. It backs the
// "dev" provider.
type DevSender struct {
	dir    string
	logger *slog.Logger
}

// DevSenderOption configures a DevSender.
type DevSenderOption func(*DevSender)

// WithDevLogger logs the path of every written email.
func WithDevLogger(l *slog.Logger) DevSenderOption {
	return func(d *DevSender) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDevSender returns a sender writing into dir, created on first send.
func NewDevSender(dir string, opts ...DevSenderOption) EmailSender {
	d := &DevSender{dir: dir, logger: logger.Noop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type devEnvelope struct {
	MessageID string `json:"message_id"`
	Timestamp string `json:"timestamp"`
	SendTo    string `json:"send_to"`
	Subject   string `json:"subject"`
	Tag       string `json:"tag,omitempty"`
	BodyText  string `json:"body_text,omitempty"`
}

// SendEmail validates params and writes the message pair. The returned
// message id is recorded in the envelope and suffixes both filenames.
func (d *DevSender) SendEmail(ctx context.Context, params SendEmailParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create %s: %v", ErrFailedToSendEmail, d.dir, err)
	}

	now := time.Now()
	id := uuid.NewString()

	label := params.Tag
	if label == "" {
		label = params.Subject
	}
	base := filepath.Join(d.dir, fmt.Sprintf("%s_%s_%s", now.Format("2006_01_02_150405"), filenameSafe(label), id[:8]))

	envelope, err := json.MarshalIndent(devEnvelope{
		MessageID: id,
		Timestamp: now.Format(time.RFC3339),
		SendTo:    params.SendTo,
		Subject:   params.Subject,
		Tag:       params.Tag,
		BodyText:  params.BodyText,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: encode envelope: %v", ErrFailedToSendEmail, err)
	}

	for path, data := range map[string][]byte{
		base + ".html": []byte(params.BodyHTML),
		base + ".json": envelope,
	} {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", fmt.Errorf("%w: write %s: %v", ErrFailedToSendEmail, filepath.Base(path), err)
		}
	}

	d.logger.LogAttrs(ctx, slog.LevelDebug, "dev email written",
		logger.MessageID(id),
		slog.String("path", base+".html"),
	)
	return id, nil
}

// filenameSafe lowercases s, turns spaces into underscores and keeps only
// ASCII letters, digits, dash, underscore and dot.
func filenameSafe(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			return r
		default:
			return -1
		}
	}, s)
	if len(s) > maxFilenameLength {
		s = s[:maxFilenameLength]
	}
	if s == "" {
		return "email"
	}
	return strings.ToLower(s)
}
