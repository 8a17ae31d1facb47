package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for document verification.
type Metrics struct {
	// Verification outcomes by operation and validity
	Verifications *prometheus.CounterVec

	// Individual validation failures by message
	ValidationErrors *prometheus.CounterVec

	VerifyLatency *prometheus.HistogramVec

	// Cache lookups by result: hit, miss, error
	CacheLookups *prometheus.CounterVec

	RateLimited prometheus.Counter
}

// New registers the verifier metrics with reg. A nil reg uses the default
// prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aadhaar_verifier_verifications_total",
			Help: "Total verifications by operation and outcome",
		}, []string{"operation", "valid"}), // operation: "document", "claim", "identifier"

		ValidationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aadhaar_verifier_validation_errors_total",
			Help: "Validation errors reported in verification results",
		}, []string{"error"}),

		VerifyLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aadhaar_verifier_verify_duration_seconds",
			Help:    "Duration of a verification, excluding cache lookups",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}, []string{"operation"}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aadhaar_verifier_cache_lookups_total",
			Help: "Result cache lookups by result",
		}, []string{"result"}),

		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "aadhaar_verifier_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}),
	}
}

// ObserveVerification records one verification and the errors it reported.
func (m *Metrics) ObserveVerification(operation string, valid bool, errs []string, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "false"
	if valid {
		outcome = "true"
	}
	m.Verifications.WithLabelValues(operation, outcome).Inc()
	m.VerifyLatency.WithLabelValues(operation).Observe(d.Seconds())
	for _, e := range errs {
		m.ValidationErrors.WithLabelValues(e).Inc()
	}
}

func (m *Metrics) IncrementCacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncrementRateLimited() {
	if m != nil {
		m.RateLimited.Inc()
	}
}
