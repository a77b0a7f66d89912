package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the insurance module.
type Metrics struct {
	// Entity creations by kind
	EntitiesCreated *prometheus.CounterVec

	// Accident reports accepted vs rejected, with the rejection reason
	AccidentOutcome *prometheus.CounterVec

	// Payment attempts by outcome: recorded, or the failed eligibility gate
	PaymentOutcome *prometheus.CounterVec

	// Policy creation latency including number allocation
	CreatePolicyLatency prometheus.Histogram
}

// New creates a new Metrics instance with all insurance module metrics registered.
func New() *Metrics {
	return &Metrics{
		EntitiesCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vims_entities_created_total",
			Help: "Total insurance entities created by kind",
		}, []string{"kind"}), // kind: "owner", "vehicle", "policy", "accident", "payment"

		AccidentOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vims_accident_reports_total",
			Help: "Total accident reports by outcome",
		}, []string{"outcome"}),

		PaymentOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vims_payment_attempts_total",
			Help: "Total payment attempts by outcome",
		}, []string{"outcome"}),

		CreatePolicyLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vims_create_policy_duration_seconds",
			Help:    "Duration of policy creation including number allocation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementEntityCreated records a successful entity creation.
func (m *Metrics) IncrementEntityCreated(kind string) {
	if m != nil {
		m.EntitiesCreated.WithLabelValues(kind).Inc()
	}
}

// IncrementAccidentOutcome records the outcome of an accident report.
func (m *Metrics) IncrementAccidentOutcome(outcome string) {
	if m != nil {
		m.AccidentOutcome.WithLabelValues(outcome).Inc()
	}
}

// IncrementPaymentOutcome records the outcome of a payment attempt.
func (m *Metrics) IncrementPaymentOutcome(outcome string) {
	if m != nil {
		m.PaymentOutcome.WithLabelValues(outcome).Inc()
	}
}

// ObserveCreatePolicy records the duration of a CreatePolicy operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveCreatePolicy(start time.Time) {
	if m != nil {
		m.CreatePolicyLatency.Observe(time.Since(start).Seconds())
	}
}
