package telemetry

import "commercemcp/internal/domain"

type NoopMetrics struct{}

func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (n *NoopMetrics) ObserveToolCall(_ domain.ToolCallMetric) {}

func (n *NoopMetrics) ObserveUpstreamRequest(_ domain.UpstreamMetric) {}

func (n *NoopMetrics) ObserveCredentialRefresh(_ error) {}

var _ domain.Metrics = (*NoopMetrics)(nil)
