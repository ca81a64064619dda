package email

import (
	"fmt"
	"time"
)

// Provider names accepted by Config.Provider.
const (
	ProviderPostmark = "postmark"
	ProviderResend   = "resend"
	ProviderDev      = "dev"
)

// Config holds email service configuration.
// Provider tokens are optional so development environments can run with the
// file-backed DevSender. SenderEmail is required as it establishes the sender
// identity for all outbound emails; SupportEmail becomes Reply-To when set.
type Config struct {
	Provider             string        `env:"EMAIL_PROVIDER" envDefault:"dev"`
	PostmarkServerToken  string        `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string        `env:"POSTMARK_ACCOUNT_TOKEN"`
	ResendAPIKey         string        `env:"RESEND_API_KEY"`
	SenderEmail          string        `env:"SENDER_EMAIL,required"`
	SupportEmail         string        `env:"SUPPORT_EMAIL"`
	DevOutputDir         string        `env:"EMAIL_DEV_DIR" envDefault:"./tmp/emails"`
	BatchSize            int           `env:"EMAIL_BATCH_SIZE" envDefault:"50"`
	BatchDelay           time.Duration `env:"EMAIL_BATCH_DELAY" envDefault:"1s"`
}

// validateIdentity checks the sender identity shared by all providers.
func (cfg Config) validateIdentity() error {
	if cfg.SenderEmail == "" {
		return fmt.Errorf("%w: SenderEmail is required", ErrInvalidConfig)
	}
	if !emailRegex.MatchString(cfg.SenderEmail) {
		return fmt.Errorf("%w: SenderEmail must be a valid email address", ErrInvalidConfig)
	}
	if cfg.SupportEmail != "" && !emailRegex.MatchString(cfg.SupportEmail) {
		return fmt.Errorf("%w: SupportEmail must be a valid email address", ErrInvalidConfig)
	}
	return nil
}
