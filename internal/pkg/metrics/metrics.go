// Package metrics defines and registers the custom Prometheus metrics of the
// admin console. It is the single source of truth for metric names, labels,
// and help strings.
//
// All metrics are registered with the default Prometheus registry on package
// initialisation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "admin_console"

// ── Guard metrics ─────────────────────────────────────────────────────────────

// GuardDecisionsTotal counts route guard outcomes.
// Labels:
//   - decision: "allow", "login" (no usable credential) or "default" (role mismatch)
//   - required_role: the role the route asked for, "any" when none
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions.",
	},
	[]string{"decision", "required_role"},
)

// ── Directory metrics ─────────────────────────────────────────────────────────

// DirectoryRequestsTotal counts calls to the user-directory service.
// Labels:
//   - op: "list_users", "toggle_role", "delete_user", "login"
//   - outcome: "ok", "http_error", "transport_error", "invalid_payload"
var DirectoryRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "directory_requests_total",
		Help:      "Total number of requests sent to the user-directory service.",
	},
	[]string{"op", "outcome"},
)

// DirectoryRequestDuration measures round-trip time to the directory service.
var DirectoryRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "directory_request_duration_seconds",
		Help:      "Duration of user-directory requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"op"},
)

// ── Failure reporting metrics ─────────────────────────────────────────────────

// FailuresReportedTotal counts failures handed to the telemetry collaborator.
// Labels:
//   - op: "load", "change_role", "delete"
//   - kind: "network", "not_authenticated", "other"
var FailuresReportedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "failures_reported_total",
		Help:      "Total number of fetch/mutation failures reported.",
	},
	[]string{"op", "kind"},
)

// ReportsDroppedTotal counts audit reports dropped because a worker queue was full.
var ReportsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_dropped_total",
		Help:      "Total number of failure reports dropped before reaching the audit sink.",
	},
)

// ReportQueueDepth tracks pending audit reports per dispatcher worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ReportQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "report_queue_depth",
		Help:      "Current number of failure reports pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
