package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"commercemcp/internal/domain"
	"commercemcp/internal/infra/commerce"
	"commercemcp/internal/infra/config"
	"commercemcp/internal/infra/gateway"
	"commercemcp/internal/infra/telemetry"
	"commercemcp/internal/infra/tools"
)

func NewMetricsRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewGoCollector())
	return registry
}

func NewMetrics(registry *prometheus.Registry) domain.Metrics {
	return telemetry.NewPrometheusMetrics(registry)
}

func NewConfig(ctx context.Context, cfg ServeConfig, logger *zap.Logger) (domain.Config, error) {
	return config.NewLoader(logger).Load(ctx, cfg.Config)
}

func NewCommerceClient(cfg domain.Config, metrics domain.Metrics, logger *zap.Logger) *commerce.Client {
	return commerce.NewClient(cfg.Upstream, commerce.Options{}, metrics, logger)
}

func NewToolRegistry(client tools.Commerce, metrics domain.Metrics, logger *zap.Logger) (*tools.Registry, error) {
	descriptors, err := tools.Catalog(client)
	if err != nil {
		return nil, fmt.Errorf("build tool catalog: %w", err)
	}
	return tools.NewRegistry(descriptors, metrics, logger)
}

func NewGateway(registry *tools.Registry, serve ServeConfig, cfg domain.Config, metricsRegistry *prometheus.Registry, logger *zap.Logger) *gateway.Gateway {
	return gateway.NewGateway(registry, gateway.Options{
		Environment: cfg.Environment,
		HTTPPath:    serve.HTTPPath,
		Gatherer:    metricsRegistry,
	}, logger)
}
