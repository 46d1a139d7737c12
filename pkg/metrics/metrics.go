// Package metrics holds the Prometheus collectors shared by providers, the
// agent pipeline and the HTTP task service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "llamaclick"

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Registry is served by the HTTP service at /metrics.
var Registry = prometheus.NewRegistry()

var (
	providerRequests = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Total number of LLM provider requests",
		},
		[]string{"provider", "outcome"},
	)

	providerDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "LLM provider request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider"},
	)

	providerRetries = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_retries_total",
			Help:      "Total number of retried LLM provider attempts",
		},
		[]string{"provider"},
	)

	stageRuns = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_runs_total",
			Help:      "Total number of pipeline stage runs",
		},
		[]string{"stage", "outcome"},
	)

	tasks = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_total",
			Help:      "Total number of executed tasks",
		},
		[]string{"outcome", "recovered"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}

func ObserveProviderRequest(provider string, d time.Duration, err error) {
	providerRequests.WithLabelValues(provider, outcome(err)).Inc()
	providerDuration.WithLabelValues(provider).Observe(d.Seconds())
}

func IncProviderRetry(provider string) {
	providerRetries.WithLabelValues(provider).Inc()
}

func ObserveStage(stage string, err error) {
	stageRuns.WithLabelValues(stage, outcome(err)).Inc()
}

func ObserveTask(recovered bool, err error) {
	r := "false"
	if recovered {
		r = "true"
	}
	tasks.WithLabelValues(outcome(err), r).Inc()
}
