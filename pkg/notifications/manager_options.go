package notifications

import (
	"log/slog"
	"time"
)

// DefaultQuietHoursDeferral delays a suppressed push when the end of the
// user's quiet window cannot be computed.
const DefaultQuietHoursDeferral = time.Hour

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger for the Manager.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithObserver registers a delivery telemetry sink.
func WithObserver(o Observer) ManagerOption {
	return func(m *Manager) {
		if o != nil {
			m.observer = o
		}
	}
}

// WithBulkConcurrency bounds how many users SendBulk processes at once.
// The default of 1 processes users sequentially.
func WithBulkConcurrency(n int) ManagerOption {
	return func(m *Manager) {
		if n > 0 {
			m.bulkConcurrency = n
		}
	}
}

// WithFallbackDeferral sets the push delay used when the quiet window end is unknown.
func WithFallbackDeferral(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.fallbackDeferral = d
		}
	}
}

// WithSendTimeout bounds each channel send.
func WithSendTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.sendTimeout = d
		}
	}
}
