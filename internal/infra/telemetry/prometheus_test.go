package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commercemcp/internal/domain"
)

func TestNewPrometheusMetrics(t *testing.T) {
	m := NewPrometheusMetrics(prometheus.NewRegistry())
	assert.NotNil(t, m)
	assert.NotNil(t, m.toolCallDuration)
	assert.NotNil(t, m.upstreamRequestDuration)
	assert.NotNil(t, m.credentialRefreshes)
}

func TestNewPrometheusMetrics_UsesProvidedRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := NewPrometheusMetrics(registry)
	m.ObserveToolCall(domain.ToolCallMetric{
		Tool:     "get_customer_orders",
		Outcome:  domain.ToolOutcomeSuccess,
		Duration: 10 * time.Millisecond,
	})
	m.ObserveUpstreamRequest(domain.UpstreamMetric{
		Operation: "list_orders",
		Status:    200,
		Duration:  5 * time.Millisecond,
	})
	m.ObserveCredentialRefresh(nil)
	m.ObserveCredentialRefresh(errors.New("denied"))

	metrics, err := registry.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(metrics))
	for _, m := range metrics {
		names = append(names, m.GetName())
	}

	assert.Contains(t, names, "commerce_mcp_tool_call_duration_seconds")
	assert.Contains(t, names, "commerce_mcp_upstream_request_duration_seconds")
	assert.Contains(t, names, "commerce_mcp_credential_refresh_total")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.credentialRefreshes.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.credentialRefreshes.WithLabelValues("error")))
}

func TestObserveUpstreamRequest_LabelsTransportFailures(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewPrometheusMetrics(registry)

	m.ObserveUpstreamRequest(domain.UpstreamMetric{Operation: "get_order", Err: errors.New("dial tcp")})

	assert.Equal(t, 1, testutil.CollectAndCount(m.upstreamRequestDuration))
	families, err := registry.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	labels := families[0].GetMetric()[0].GetLabel()
	values := map[string]string{}
	for _, label := range labels {
		values[label.GetName()] = label.GetValue()
	}
	assert.Equal(t, "get_order", values["operation"])
	assert.Equal(t, "error", values["status"])
}
