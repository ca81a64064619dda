package email_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/email"
)

func TestSendEmailParams_Validate(t *testing.T) {
	t.Parallel()

	valid := email.SendEmailParams{
		SendTo:   "user@example.com",
		Subject:  "Test Subject",
		BodyHTML: "<p>Test body</p>",
	}

	tests := []struct {
		name   string
		mutate func(p *email.SendEmailParams)
		errMsg string
	}{
		{name: "valid params", mutate: func(p *email.SendEmailParams) { p.Tag = "test" }},
		{name: "complex valid email", mutate: func(p *email.SendEmailParams) { p.SendTo = "test.user+tag@sub.example.com" }},
		{name: "empty SendTo", mutate: func(p *email.SendEmailParams) { p.SendTo = "" }, errMsg: "SendTo is required"},
		{name: "whitespace only SendTo", mutate: func(p *email.SendEmailParams) { p.SendTo = "   " }, errMsg: "SendTo is required"},
		{name: "invalid email format", mutate: func(p *email.SendEmailParams) { p.SendTo = "invalid-email" }, errMsg: "SendTo must be a valid email address"},
		{name: "missing domain", mutate: func(p *email.SendEmailParams) { p.SendTo = "user@" }, errMsg: "SendTo must be a valid email address"},
		{name: "missing local part", mutate: func(p *email.SendEmailParams) { p.SendTo = "@example.com" }, errMsg: "SendTo must be a valid email address"},
		{name: "empty Subject", mutate: func(p *email.SendEmailParams) { p.Subject = " " }, errMsg: "Subject is required"},
		{name: "empty BodyHTML", mutate: func(p *email.SendEmailParams) { p.BodyHTML = "" }, errMsg: "BodyHTML is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			params := valid
			tt.mutate(&params)

			err := params.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, email.ErrInvalidParams)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDevSender_SendEmail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("writes html and metadata", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		sender := email.NewDevSender(dir)

		id, err := sender.SendEmail(ctx, email.SendEmailParams{
			SendTo:   "user@example.com",
			Subject:  "Test Email",
			BodyHTML: "<p>Test content</p>",
			BodyText: "Test content",
			Tag:      "welcome",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, id)

		files, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, files, 2)

		var htmlFile, jsonFile string
		for _, f := range files {
			switch filepath.Ext(f.Name()) {
			case ".html":
				htmlFile = f.Name()
			case ".json":
				jsonFile = f.Name()
			}
		}
		require.NotEmpty(t, htmlFile)
		require.NotEmpty(t, jsonFile)
		assert.Contains(t, htmlFile, "welcome")

		body, err := os.ReadFile(filepath.Join(dir, htmlFile))
		require.NoError(t, err)
		assert.Equal(t, "<p>Test content</p>", string(body))

		raw, err := os.ReadFile(filepath.Join(dir, jsonFile))
		require.NoError(t, err)

		var meta map[string]string
		require.NoError(t, json.Unmarshal(raw, &meta))
		assert.Equal(t, id, meta["message_id"])
		assert.Equal(t, "user@example.com", meta["send_to"])
		assert.Equal(t, "Test Email", meta["subject"])
		assert.Equal(t, "welcome", meta["tag"])
	})

	t.Run("subject used when tag is empty", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		sender := email.NewDevSender(dir)

		_, err := sender.SendEmail(ctx, email.SendEmailParams{
			SendTo:   "user@example.com",
			Subject:  "Hello World!",
			BodyHTML: "<p>x</p>",
		})
		require.NoError(t, err)

		files, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.NotEmpty(t, files)
		assert.True(t, strings.Contains(files[0].Name(), "hello_world"))
	})

	t.Run("distinct ids for identical sends", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		sender := email.NewDevSender(dir)
		params := email.SendEmailParams{SendTo: "user@example.com", Subject: "Same", BodyHTML: "<p>x</p>"}

		first, err := sender.SendEmail(ctx, params)
		require.NoError(t, err)
		second, err := sender.SendEmail(ctx, params)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)

		files, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, files, 4)
	})

	t.Run("invalid params", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		sender := email.NewDevSender(dir)

		_, err := sender.SendEmail(ctx, email.SendEmailParams{SendTo: "nope"})
		assert.ErrorIs(t, err, email.ErrInvalidParams)

		files, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, files)
	})
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	base := email.Config{
		PostmarkServerToken:  "server",
		PostmarkAccountToken: "account",
		ResendAPIKey:         "re_key",
		SenderEmail:          "sender@example.com",
		DevOutputDir:         t.TempDir(),
	}

	for _, provider := range []string{email.ProviderPostmark, email.ProviderResend, email.ProviderDev, ""} {
		cfg := base
		cfg.Provider = provider
		sender, err := email.NewFromConfig(cfg)
		require.NoError(t, err, provider)
		assert.NotNil(t, sender, provider)
	}

	cfg := base
	cfg.Provider = "sendgrid"
	_, err := email.NewFromConfig(cfg)
	assert.ErrorIs(t, err, email.ErrUnknownProvider)
}
