package devicetoken

import "errors"

var (
	ErrInvalidTokenFormat = errors.New("invalid device token format")
	ErrUnknownPlatform    = errors.New("unknown device platform")
	ErrFailedToRegister   = errors.New("failed to register device token")
	ErrStorage            = errors.New("device token storage error")
)
