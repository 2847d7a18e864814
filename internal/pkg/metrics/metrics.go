// Package metrics defines the custom Prometheus metrics of the task-manager
// API. It is the single source of truth for metric names, labels, and help
// strings.
//
// Call Register once per registry (the router does this before serving) to
// expose the collectors on /metrics.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "taskmanager"

// ── Authentication metrics ────────────────────────────────────────────────────

// SignupsTotal counts signup attempts.
// Label:
//   - result: "created", "duplicate", "invalid", "error"
var SignupsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of signup attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "throttled", "error"
var LoginsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// GateRejectionsTotal counts requests refused by the authorization gate.
// Label:
//   - reason: "missing_header", "invalid_header", "malformed", "bad_signature", "expired"
var GateRejectionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_rejections_total",
		Help:      "Total number of protected requests rejected by the authorization gate.",
	},
	[]string{"reason"},
)

// PasswordHashDuration measures bcrypt work.
// Label:
//   - op: "hash" or "verify"
var PasswordHashDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of password hash and verify operations.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	},
	[]string{"op"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsTotal counts audit event deliveries.
// Label:
//   - result: "persisted", "failed", "dropped"
var AuditEventsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of authentication audit events, by delivery result.",
	},
	[]string{"result"},
)

// AuditQueueDepth tracks the number of events waiting in each dispatcher worker channel.
var AuditQueueDepth = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Resource metrics ──────────────────────────────────────────────────────────

var ProjectsCreatedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "projects_created_total",
		Help:      "Total number of projects created.",
	},
)

var TasksCreatedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_created_total",
		Help:      "Total number of tasks created.",
	},
)

var collectors = []prometheus.Collector{
	SignupsTotal,
	LoginsTotal,
	GateRejectionsTotal,
	PasswordHashDuration,
	AuditEventsTotal,
	AuditQueueDepth,
	ProjectsCreatedTotal,
	TasksCreatedTotal,
}

// Register adds every collector to reg. Collectors already present in reg
// are skipped.
func Register(reg prometheus.Registerer) error {
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}
