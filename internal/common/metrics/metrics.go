// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RoutingDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routing_decisions_total",
			Help: "Total number of routing decisions by strategy and sensitivity level",
		},
		[]string{"strategy", "sensitivity"},
	)

	RoutingDecisionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "routing_decision_duration_seconds",
			Help: "Duration of the full classify-assess-estimate-decide pipeline",
		},
		[]string{"task_type"},
	)

	RoutingOverridesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routing_overrides_total",
			Help: "Total number of post-lookup overrides applied",
		},
		[]string{"override"},
	)

	RoutingUnknownTaskTypes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "routing_unknown_task_types_total",
			Help: "Requests whose task type was absent from the capability catalog",
		},
	)

	RoutingDependencyTimeouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routing_dependency_timeouts_total",
			Help: "Optional dependency calls that timed out and were degraded",
		},
		[]string{"dependency"},
	)

	SinkWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routing_sink_write_failures_total",
			Help: "Routing record emissions that failed, by sink",
		},
		[]string{"sink"},
	)

	BatchWindowTasks = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "routing_batch_window_tasks",
			Help: "Tasks counted in the current accounting window, by task type",
		},
		[]string{"task_type"},
	)
)
