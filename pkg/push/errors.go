package push

import "errors"

var (
	// ErrTokenInvalid marks a token the provider will never deliver to again.
	// Providers wrap it so callers can match with errors.Is.
	ErrTokenInvalid = errors.New("push token is permanently invalid")

	ErrNoTokens        = errors.New("no active push tokens")
	ErrNoProvider      = errors.New("no push provider for platform")
	ErrAllTokensFailed = errors.New("push delivery failed for every token")
	ErrProviderFailure = errors.New("push provider request failed")
	ErrMissingConfig   = errors.New("push provider is not configured")
	ErrMalformedToken  = errors.New("malformed push token")
)
