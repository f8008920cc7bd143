package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Correction outcomes.
const (
	OutcomeOK            = "ok"
	OutcomeRejected      = "rejected"
	OutcomeParseError    = "parse_error"
	OutcomeProviderError = "provider_error"
	OutcomeTimeout       = "timeout"
	OutcomeConfigError   = "config_error"
	OutcomeCancelled     = "cancelled"
)

var (
	// RequestsTotal counts HTTP requests by method, path, and status code.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grammar_proxy_requests_total",
		Help: "Total HTTP requests processed.",
	}, []string{"method", "path", "status"})

	// ProviderDuration tracks the time spent waiting on the LLM provider,
	// retries included.
	ProviderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "grammar_proxy_provider_duration_seconds",
		Help:    "Time spent on provider completion calls.",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"provider"})

	// CorrectionsTotal counts corrections by provider and outcome.
	CorrectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grammar_proxy_corrections_total",
		Help: "Corrections by provider and outcome.",
	}, []string{"provider", "outcome"})

	// ProviderConfigured is 1 for every provider with a credential.
	ProviderConfigured = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "grammar_proxy_provider_configured",
		Help: "Whether an LLM provider has a credential (1) or not (0).",
	}, []string{"provider"})
)

// SetConfigured publishes provider availability.
func SetConfigured(available map[string]bool) {
	for name, ok := range available {
		v := 0.0
		if ok {
			v = 1
		}
		ProviderConfigured.WithLabelValues(name).Set(v)
	}
}
