// Package metrics defines and registers all custom Prometheus metrics
// for the broker admin gateway. It is the single source of truth for
// metric names, labels, and help strings.
//
// Metrics self-register with the default registry via promauto; the
// router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gateway"

// ── Guard metrics ─────────────────────────────────────────────────────────────

// GuardDecisionsTotal counts navigation decisions.
// Labels:
//   - action: "render", "wait", or "redirect"
//   - reason: why the action was taken (e.g. "unauthenticated", "role_mismatch")
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by action and reason.",
	},
	[]string{"action", "reason"},
)

// ForcedLogoutsTotal counts sessions cleared because an upstream call
// returned 401.
var ForcedLogoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "forced_logouts_total",
		Help:      "Total number of forced logouts triggered by upstream 401 responses.",
	},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// AuthAttemptsTotal counts login and register attempts.
// Labels:
//   - operation: "login" or "register"
//   - result: "success" or "failure"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts, by operation and result.",
	},
	[]string{"operation", "result"},
)

// SessionAuthenticated tracks whether the gateway currently holds an
// authenticated session (1) or not (0).
var SessionAuthenticated = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_authenticated",
		Help:      "Whether the gateway session is currently authenticated.",
	},
)

// ── Upstream metrics ──────────────────────────────────────────────────────────

// UpstreamRequestDuration tracks latency of outbound calls to the
// brokerage backend.
// Labels:
//   - method: HTTP method
//   - status: response status code, or "0" when no response arrived
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of outbound requests to the backend, by method and status.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "status"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsTotal counts audit pipeline outcomes.
// Label:
//   - result: "ok", "error", or "dropped"
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of access audit events, by persistence result.",
	},
	[]string{"result"},
)

// AuditQueueDepth tracks the current number of events waiting in each
// audit worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of events pending in each audit worker channel.",
	},
	[]string{"worker_id"},
)
