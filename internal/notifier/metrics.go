package notifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	notificationsPersisted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_notifications_persisted_total",
			Help: "Notifications written to storage by event type.",
		},
		[]string{"event"},
	)
	notificationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_notifications_failed_total",
			Help: "Notifications that failed to persist by event type.",
		},
		[]string{"event"},
	)
	pushTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_push_total",
			Help: "Real-time push attempts by status.",
		},
		[]string{"status"},
	)
	pushDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atlas_push_duration_seconds",
			Help:    "Duration of real-time publish calls.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)
	pushQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "atlas_push_queue_depth",
			Help: "Push jobs waiting in the worker queue.",
		},
	)
)
