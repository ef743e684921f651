package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "renotimeline_scheduler_scans_total",
		Help: "Scan passes run, by trigger type.",
	}, []string{"trigger"})

	ScanErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "renotimeline_scheduler_scan_errors_total",
		Help: "Top-level scan failures, by trigger type.",
	}, []string{"trigger"})

	TriggersMatchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "renotimeline_scheduler_triggers_matched_total",
		Help: "Trigger payloads forwarded to the executor, by trigger type.",
	}, []string{"trigger"})

	ExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "renotimeline_scheduler_executions_total",
		Help: "Workflow executions finalized, by status.",
	}, []string{"status"})

	NotificationsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "renotimeline_scheduler_notifications_created_total",
		Help: "Notifications inserted by the scheduler.",
	})

	DuplicatesSuppressedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "renotimeline_scheduler_duplicates_suppressed_total",
		Help: "Notification inserts suppressed by the same-day dedup key.",
	})
)
