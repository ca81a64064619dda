package push

import (
	"errors"
	"fmt"
)

// Result summarises a multicast send.
type Result struct {
	Tokens        []TokenResult
	SuccessCount  int
	FailureCount  int
	InvalidTokens []string
	Err           error // set when nothing could be attempted
}

// Success reports whether at least one token accepted the message.
func (r Result) Success() bool {
	return r.SuccessCount > 0
}

// MessageID returns the provider id of the first successful delivery.
func (r Result) MessageID() string {
	for _, t := range r.Tokens {
		if t.Err == nil {
			return t.MessageID
		}
	}
	return ""
}

// Failure explains why no token succeeded. It is nil for a successful result.
func (r Result) Failure() error {
	if r.Success() {
		return nil
	}
	if r.Err != nil {
		return r.Err
	}
	for _, t := range r.Tokens {
		if t.Err != nil {
			return fmt.Errorf("%w (%d tokens): %w", ErrAllTokensFailed, len(r.Tokens), t.Err)
		}
	}
	return ErrNoTokens
}

func newResult(results []TokenResult) Result {
	r := Result{Tokens: results}
	for _, t := range results {
		switch {
		case t.Err == nil:
			r.SuccessCount++
		case errors.Is(t.Err, ErrTokenInvalid):
			r.FailureCount++
			r.InvalidTokens = append(r.InvalidTokens, t.Token)
		default:
			r.FailureCount++
		}
	}
	return r
}
