package notifications

import "fmt"

// EventType identifies the kind of event that produced a notification.
type EventType string

const (
	EventStoryUploaded           EventType = "story_uploaded"
	EventStoryProcessingComplete EventType = "story_processing_complete"
	EventInteractionAdded        EventType = "interaction_added"
	EventFollowUpQuestion        EventType = "follow_up_question"
	EventInvitationReceived      EventType = "invitation_received"
	EventExportReady             EventType = "export_ready"
	EventSubscriptionExpiring    EventType = "subscription_expiring"
)

// AllEventTypes returns every supported event type.
func AllEventTypes() []EventType {
	return []EventType{
		EventStoryUploaded,
		EventStoryProcessingComplete,
		EventInteractionAdded,
		EventFollowUpQuestion,
		EventInvitationReceived,
		EventExportReady,
		EventSubscriptionExpiring,
	}
}

func (t EventType) Valid() bool {
	switch t {
	case EventStoryUploaded,
		EventStoryProcessingComplete,
		EventInteractionAdded,
		EventFollowUpQuestion,
		EventInvitationReceived,
		EventExportReady,
		EventSubscriptionExpiring:
		return true
	default:
		return false
	}
}

func (t EventType) String() string { return string(t) }

// ParseEventType converts s to an EventType, rejecting unknown names.
func ParseEventType(s string) (EventType, error) {
	t := EventType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownEventType, s)
	}
	return t, nil
}
