package email

import "fmt"

// NewFromConfig builds the EmailSender selected by cfg.Provider.
func NewFromConfig(cfg Config) (EmailSender, error) {
	switch cfg.Provider {
	case ProviderPostmark:
		return NewPostmarkClient(cfg)
	case ProviderResend:
		return NewResendClient(cfg)
	case ProviderDev, "":
		return NewDevSender(cfg.DevOutputDir), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
