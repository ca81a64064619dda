package redis

import "errors"

var (
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	ErrRedisNotReady                = errors.New("redis did not become ready within the given time period")
	ErrEmptyConnectionURL           = errors.New("empty redis connection URL, use REDIS_URL env var")
	ErrHealthcheckFailed            = errors.New("redis healthcheck failed")
	ErrLockFailed                   = errors.New("redis lock operation failed")
	ErrLockNotHeld                  = errors.New("redis lock no longer held")
)
