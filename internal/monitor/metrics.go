package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "silema",
			Subsystem: "monitor",
			Name:      "cycles_total",
			Help:      "Monitor cycles by outcome (completed, error, overlap_skipped).",
		},
		[]string{"outcome"},
	)

	cycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "silema",
			Subsystem: "monitor",
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of completed monitor cycles.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	alertsSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "silema",
			Subsystem: "monitor",
			Name:      "alerts_sent_total",
			Help:      "Contact notifications delivered by monitor cycles.",
		},
	)

	notifyFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "silema",
			Subsystem: "monitor",
			Name:      "notify_failures_total",
			Help:      "Contact notifications that failed or timed out.",
		},
	)

	userSkipsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "silema",
			Subsystem: "monitor",
			Name:      "user_skips_total",
			Help:      "Users not alerted in a cycle, by reason.",
		},
		[]string{"reason"},
	)

	userErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "silema",
			Subsystem: "monitor",
			Name:      "user_errors_total",
			Help:      "Users whose state could not be read from the store.",
		},
	)
)
