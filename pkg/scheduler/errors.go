package scheduler

import "errors"

var (
	ErrAlreadyStarted     = errors.New("scheduler already started")
	ErrNotStarted         = errors.New("scheduler not started")
	ErrDispatchInProgress = errors.New("dispatch tick already in progress")
	ErrLockHeld           = errors.New("dispatch lock held by another instance")
	ErrMissingDependency  = errors.New("scheduler dependency is nil")
)
