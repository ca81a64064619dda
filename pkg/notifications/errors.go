package notifications

import "errors"

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidTransition    = errors.New("notification status transition not allowed")
	ErrUnknownChannel       = errors.New("unknown notification channel")
	ErrUnknownEventType     = errors.New("unknown notification event type")
	ErrNoSender             = errors.New("no sender registered for channel")
	ErrNoChannels           = errors.New("notification has no delivery channels")
	ErrDispatchInFlight     = errors.New("notification delivery already in progress")
	ErrFailedToCreate       = errors.New("failed to persist notification")
	ErrFailedToUpdateStatus = errors.New("failed to update notification status")
	ErrFailedToResolve      = errors.New("failed to resolve delivery preferences")
	ErrStorage              = errors.New("notification storage error")
)
