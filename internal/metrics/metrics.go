package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadform_submissions_total",
			Help: "Total number of form submissions by outcome",
		},
		[]string{"outcome"},
	)

	WebhookRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "leadform_webhook_request_duration_seconds",
			Help:    "Duration of enrichment webhook calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	CompanyLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadform_company_lookups_total",
			Help: "Total number of company lookups by outcome and matching strategy",
		},
		[]string{"outcome", "strategy"},
	)
)

// Submission outcomes.
const (
	OutcomeSubmitted  = "submitted"
	OutcomeInvalid    = "invalid"
	OutcomeRelayError = "relay_error"
	OutcomeTimeout    = "timeout"
)

// Lookup outcomes.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)
