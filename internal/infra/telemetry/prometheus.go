package telemetry

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"commercemcp/internal/domain"
)

type PrometheusMetrics struct {
	toolCallDuration        *prometheus.HistogramVec
	upstreamRequestDuration *prometheus.HistogramVec
	credentialRefreshes     *prometheus.CounterVec
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		toolCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "commerce_mcp_tool_call_duration_seconds",
				Help:    "Duration of tool calls in seconds",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"tool", "outcome"},
		),
		upstreamRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "commerce_mcp_upstream_request_duration_seconds",
				Help:    "Duration of requests to the commerce API and auth server in seconds",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation", "status"},
		),
		credentialRefreshes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commerce_mcp_credential_refresh_total",
				Help: "Total number of access token refresh attempts",
			},
			[]string{"result"},
		),
	}
}

func (p *PrometheusMetrics) ObserveToolCall(metric domain.ToolCallMetric) {
	p.toolCallDuration.WithLabelValues(metric.Tool, string(metric.Outcome)).Observe(metric.Duration.Seconds())
}

func (p *PrometheusMetrics) ObserveUpstreamRequest(metric domain.UpstreamMetric) {
	status := "error"
	if metric.Status > 0 {
		status = strconv.Itoa(metric.Status)
	}
	p.upstreamRequestDuration.WithLabelValues(metric.Operation, status).Observe(metric.Duration.Seconds())
}

func (p *PrometheusMetrics) ObserveCredentialRefresh(err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	p.credentialRefreshes.WithLabelValues(result).Inc()
}

var _ domain.Metrics = (*PrometheusMetrics)(nil)
