package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the workflow engine.
type Metrics struct {
	WorkflowRequests   *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	SignatureFailures  prometheus.Counter
	PaymentsRecorded   prometheus.Counter
	EntitlementsUpsert prometheus.Counter
	DuplicateCharges   prometheus.Counter
	CredentialsIssued  prometheus.Counter
	DegradedSteps      *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		WorkflowRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coursegate_workflow_requests_total",
			Help: "Workflow requests by action and outcome",
		}, []string{"action", "outcome"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "coursegate_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
		SignatureFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coursegate_signature_failures_total",
			Help: "Payment callbacks rejected for signature mismatch",
		}),
		PaymentsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coursegate_payments_recorded_total",
			Help: "Payment records written",
		}),
		EntitlementsUpsert: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coursegate_entitlements_upserted_total",
			Help: "Entitlement grants and extensions applied",
		}),
		DuplicateCharges: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coursegate_duplicate_charges_total",
			Help: "Entitlement extensions suppressed by the charge idempotency key",
		}),
		CredentialsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coursegate_credentials_issued_total",
			Help: "Certificates issued",
		}),
		DegradedSteps: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coursegate_degraded_steps_total",
			Help: "Best-effort workflow steps that failed and were skipped",
		}, []string{"step"}),
	}
}
