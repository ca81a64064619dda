package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/scheduler"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "notifykit"

// Collector exports delivery and scheduler telemetry to Prometheus.
type Collector struct {
	deliveries      *prometheus.CounterVec
	deliveryLatency *prometheus.HistogramVec
	dispatched      *prometheus.CounterVec
	ticks           *prometheus.CounterVec
	tickItems       *prometheus.CounterVec
	tickDuration    *prometheus.HistogramVec
	tickSkipped     *prometheus.CounterVec
}

var (
	_ notifications.Observer = (*Collector)(nil)
	_ scheduler.Observer     = (*Collector)(nil)
)

// New registers the collector's metrics with reg. An empty namespace uses
// DefaultNamespace.
func New(reg prometheus.Registerer, namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	f := promauto.With(reg)

	return &Collector{
		deliveries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Channel delivery attempts by outcome.",
		}, []string{"channel", "outcome"}),
		deliveryLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "delivery_duration_seconds",
			Help:      "Latency of a single channel delivery attempt.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"channel"}),
		dispatched: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_dispatched_total",
			Help:      "Notifications that reached a terminal dispatch status.",
		}, []string{"status"}),
		ticks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "ticks_total",
			Help:      "Completed scheduler ticks.",
		}, []string{"tick"}),
		tickItems: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "tick_items_total",
			Help:      "Items processed by scheduler ticks.",
		}, []string{"tick"}),
		tickDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "tick_duration_seconds",
			Help:      "Duration of completed scheduler ticks.",
			Buckets:   []float64{.01, .05, .1, .5, 1, 5, 15, 30, 60, 300},
		}, []string{"tick"}),
		tickSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "ticks_skipped_total",
			Help:      "Scheduler ticks skipped because a previous run or another instance held the tick.",
		}, []string{"tick"}),
	}
}

func (c *Collector) DeliveryAttempted(channel notifications.Channel, success bool, elapsed time.Duration) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	c.deliveries.WithLabelValues(channel.String(), outcome).Inc()
	c.deliveryLatency.WithLabelValues(channel.String()).Observe(elapsed.Seconds())
}

func (c *Collector) NotificationDispatched(status notifications.Status) {
	c.dispatched.WithLabelValues(status.String()).Inc()
}

func (c *Collector) TickCompleted(tick string, processed int, elapsed time.Duration) {
	c.ticks.WithLabelValues(tick).Inc()
	c.tickItems.WithLabelValues(tick).Add(float64(processed))
	c.tickDuration.WithLabelValues(tick).Observe(elapsed.Seconds())
}

func (c *Collector) TickSkipped(tick string) {
	c.tickSkipped.WithLabelValues(tick).Inc()
}
