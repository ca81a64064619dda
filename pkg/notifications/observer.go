package notifications

import "time"

// Observer receives delivery telemetry from the Manager.
type Observer interface {
	DeliveryAttempted(channel Channel, success bool, elapsed time.Duration)
	NotificationDispatched(status Status)
}

type noopObserver struct{}

func (noopObserver) DeliveryAttempted(Channel, bool, time.Duration) {}
func (noopObserver) NotificationDispatched(Status)                  {}
