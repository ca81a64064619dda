// Package metrics exports notification delivery and scheduler telemetry as
// Prometheus metrics. Collector plugs into notifications.WithObserver and
// scheduler.WithObserver.
package metrics
