package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const probeTimeout = 2 * time.Second

// Healthcheck returns a readiness probe that expects PONG within probeTimeout.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()

		pong, err := client.Ping(ctx).Result()
		if err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		if pong != "PONG" {
			return errors.Join(ErrHealthcheckFailed, errors.New("unexpected ping reply: "+pong))
		}
		return nil
	}
}
