package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "openfda_mcp"

// Upstream (openFDA) Prometheus metrics.
var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of openFDA searches by final status",
		},
		[]string{"status"}, // "success" / "error"
	)

	UpstreamAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_attempts_total",
			Help:      "Total number of HTTP attempts against openFDA, including retries",
		},
		[]string{"outcome"}, // "ok" / "timeout" / "network" / "http_error"
	)

	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "openFDA search duration in seconds, retries included",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 100},
		},
		[]string{"status"},
	)

	UpstreamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Total openFDA errors by kind",
		},
		[]string{"error_type"},
	)

	UpstreamRequestsLastMinute = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "upstream_requests_last_minute",
			Help:      "openFDA requests issued during the trailing minute",
		},
	)

	ToolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Total MCP tool invocations by outcome",
		},
		[]string{"tool", "outcome"},
	)
)

var upstreamMetricsRegistered bool

// RegisterUpstreamMetrics registers upstream and tool metrics. Must be called once from main.
func RegisterUpstreamMetrics() {
	if upstreamMetricsRegistered {
		return
	}
	prometheus.MustRegister(UpstreamRequestsTotal)
	prometheus.MustRegister(UpstreamAttemptsTotal)
	prometheus.MustRegister(UpstreamRequestDuration)
	prometheus.MustRegister(UpstreamErrorsTotal)
	prometheus.MustRegister(UpstreamRequestsLastMinute)
	prometheus.MustRegister(ToolCallsTotal)
	upstreamMetricsRegistered = true
}
