// Package metrics exposes Prometheus counters for polling and notification.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spotwatch_polls_total",
			Help: "Total number of polling cycles by outcome",
		},
		[]string{"target", "outcome"},
	)

	PollDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spotwatch_poll_duration_seconds",
			Help:    "Duration of one fetch-and-classify cycle in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"target"},
	)

	FreeSpots = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "spotwatch_free_spots",
			Help: "Free spots seen on the last successful poll",
		},
		[]string{"target"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spotwatch_notifications_total",
			Help: "Total number of notifications by status",
		},
		[]string{"status"},
	)

	ResolutionFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spotwatch_resolution_failures_total",
			Help: "Targets excluded at startup by reason",
		},
		[]string{"reason"},
	)

	ActiveTasks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "spotwatch_active_tasks",
			Help: "Number of polling goroutines currently running",
		},
	)
)

func RecordPoll(target, outcome string, seconds float64) {
	PollsTotal.WithLabelValues(target, outcome).Inc()
	PollDuration.WithLabelValues(target).Observe(seconds)
}

func RecordFreeSpots(target string, free int) {
	FreeSpots.WithLabelValues(target).Set(float64(free))
}

func RecordNotification(status string) {
	NotificationsTotal.WithLabelValues(status).Inc()
}

func RecordResolutionFailure(reason string) {
	ResolutionFailuresTotal.WithLabelValues(reason).Inc()
}

func TaskStarted() {
	ActiveTasks.Inc()
}

func TaskStopped() {
	ActiveTasks.Dec()
}
