package preferences

import "errors"

var (
	ErrPreferencesNotFound = errors.New("notification preferences not found")
	ErrFailedToLoad        = errors.New("failed to load notification preferences")
	ErrFailedToSave        = errors.New("failed to save notification preferences")
	ErrInvalidDefaults     = errors.New("invalid default channel configuration")
	ErrStorage             = errors.New("preferences storage error")
)
