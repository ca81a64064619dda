package notifications

// Status is the lifecycle state of a notification.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
	StatusRead    Status = "read"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusSent, StatusFailed, StatusRead:
		return true
	default:
		return false
	}
}

func (s Status) String() string { return string(s) }

// CanTransitionTo reports whether moving from s to next is allowed.
// Read is reachable only from sent. Read to read is accepted as a no-op.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusSent || next == StatusFailed
	case StatusSent:
		return next == StatusRead
	case StatusRead:
		return next == StatusRead
	case StatusFailed:
		return false
	default:
		return false
	}
}

// Terminal reports whether no further delivery will be attempted.
func (s Status) Terminal() bool {
	switch s {
	case StatusFailed, StatusRead:
		return true
	case StatusPending, StatusSent:
		return false
	default:
		return false
	}
}
