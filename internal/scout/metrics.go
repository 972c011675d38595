package scout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	retryAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shutterscout_retry_attempts_total",
		Help: "Attempts made by the retry helper, by operation and outcome.",
	}, []string{"operation", "outcome"})

	retryExhausted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shutterscout_retry_exhausted_total",
		Help: "Operations that produced no result after all attempts.",
	}, []string{"operation"})

	aggregationRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shutterscout_aggregation_runs_total",
		Help: "Aggregation runs by outcome.",
	}, []string{"outcome"})

	aggregationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shutterscout_aggregation_duration_seconds",
		Help:    "Wall time of a full aggregation run.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
	})

	// ProviderRequests is incremented by provider clients once per HTTP call.
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shutterscout_provider_requests_total",
		Help: "Provider calls by provider and result kind (ok, config, network, provider, data).",
	}, []string{"provider", "result"})
)
