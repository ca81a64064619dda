package push

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/notifykit/pkg/devicetoken"
)

// Router dispatches tokens to a provider by platform, so FCM can serve
// mobile devices while web push serves browsers.
type Router struct {
	providers map[devicetoken.Platform]Provider
}

// NewRouter creates a Router from a platform to provider mapping.
func NewRouter(providers map[devicetoken.Platform]Provider) *Router {
	r := &Router{providers: make(map[devicetoken.Platform]Provider, len(providers))}
	for platform, p := range providers {
		if p != nil {
			r.providers[platform] = p
		}
	}
	return r
}

// SendMulticast groups tokens by platform and issues one multicast per
// provider. Tokens without a provider fail with ErrNoProvider.
func (r *Router) SendMulticast(ctx context.Context, tokens []devicetoken.DeviceToken, msg Message) ([]TokenResult, error) {
	results := make([]TokenResult, len(tokens))
	groups := make(map[devicetoken.Platform][]int)
	for i, tok := range tokens {
		groups[tok.Platform] = append(groups[tok.Platform], i)
	}

	for platform, idx := range groups {
		provider, ok := r.providers[platform]
		if !ok {
			for _, i := range idx {
				results[i] = TokenResult{Token: tokens[i].Token, Err: fmt.Errorf("%w: %s", ErrNoProvider, platform)}
			}
			continue
		}

		batch := make([]devicetoken.DeviceToken, len(idx))
		for j, i := range idx {
			batch[j] = tokens[i]
		}
		out, err := provider.SendMulticast(ctx, batch, msg)
		for j, i := range idx {
			switch {
			case err != nil:
				results[i] = TokenResult{Token: tokens[i].Token, Err: err}
			case j < len(out):
				results[i] = out[j]
			default:
				results[i] = TokenResult{Token: tokens[i].Token, Err: ErrProviderFailure}
			}
		}
	}
	return results, nil
}

func (r *Router) Validate(ctx context.Context, tok devicetoken.DeviceToken) error {
	provider, ok := r.providers[tok.Platform]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoProvider, tok.Platform)
	}
	return provider.Validate(ctx, tok)
}
