package push

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/notifykit/pkg/devicetoken"
)

// fanout calls send for every token with at most limit calls in flight.
// One token failing never stops the others.
func fanout(ctx context.Context, tokens []devicetoken.DeviceToken, limit int,
	send func(context.Context, devicetoken.DeviceToken) (string, error),
) []TokenResult {
	results := make([]TokenResult, len(tokens))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, tok := range tokens {
		g.Go(func() error {
			id, err := send(ctx, tok)
			results[i] = TokenResult{Token: tok.Token, MessageID: id, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
