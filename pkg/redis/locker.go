package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a single-instance Redis lock built on SET NX PX.
// It gives the scheduler cross-process exclusion; it is not a fencing lock.
type Locker struct {
	client redis.UniversalClient
	prefix string
}

// NewLocker creates a Locker. Keys are stored as "<prefix>:<key>" when prefix is set.
func NewLocker(client redis.UniversalClient, prefix string) *Locker {
	return &Locker{client: client, prefix: prefix}
}

// TryLock attempts to acquire key for ttl without waiting. ok is false when
// another holder owns the key. The returned unlock releases the key only if
// this holder still owns it and returns ErrLockNotHeld otherwise.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	key = l.key(key)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, errors.Join(ErrLockFailed, err)
	}
	if !ok {
		return nil, false, nil
	}

	unlock := func(ctx context.Context) error {
		n, err := releaseScript.Run(ctx, l.client, []string{key}, token).Int()
		if err != nil {
			return errors.Join(ErrLockFailed, err)
		}
		if n == 0 {
			return ErrLockNotHeld
		}
		return nil
	}
	return unlock, true, nil
}

func (l *Locker) key(k string) string {
	if l.prefix == "" {
		return k
	}
	return l.prefix + ":" + k
}
