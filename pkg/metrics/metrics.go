// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// RunsTotal tracks assistant runs by terminal status.
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_runs_total",
			Help: "Total assistant runs by terminal status",
		},
		[]string{"status"},
	)

	// RunPollIterations tracks how many status checks a run needed.
	RunPollIterations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assistant_run_poll_iterations",
			Help:    "Status checks issued before a run reached a terminal state",
			Buckets: []float64{1, 2, 3, 5, 8, 10, 12, 15},
		},
	)

	// SendRetriesTotal tracks rate-limit retries of the send path.
	SendRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_send_retries_total",
			Help: "Rate-limit retries of the message send path",
		},
	)

	// QuotaErrorsTotal tracks quota-exceeded failures.
	QuotaErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_quota_errors_total",
			Help: "Requests failed because the provider quota was exhausted",
		},
	)

	// ThreadsCreatedTotal tracks remote threads created.
	ThreadsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_threads_created_total",
			Help: "Remote threads created",
		},
	)

	// SSEConnectionsActive tracks active SSE connections.
	SSEConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_connections_active",
			Help: "Number of active SSE connections",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordRun records a finished run with its poll iteration count.
func RecordRun(status string, iterations int) {
	RunsTotal.WithLabelValues(status).Inc()
	RunPollIterations.Observe(float64(iterations))
}

// IncrementSSEConnections increments the active SSE connection count.
func IncrementSSEConnections() {
	SSEConnectionsActive.Inc()
}

// DecrementSSEConnections decrements the active SSE connection count.
func DecrementSSEConnections() {
	SSEConnectionsActive.Dec()
}
