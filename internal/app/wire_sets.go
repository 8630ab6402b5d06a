//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"commercemcp/internal/infra/commerce"
	"commercemcp/internal/infra/tools"
)

var CoreInfraSet = wire.NewSet(
	NewLogging,
	NewLogger,
	NewMetricsRegistry,
	NewMetrics,
	NewConfig,
)

var CommerceSet = wire.NewSet(
	NewCommerceClient,
	wire.Bind(new(tools.Commerce), new(*commerce.Client)),
	NewToolRegistry,
	NewGateway,
)

var AppSet = wire.NewSet(
	CoreInfraSet,
	CommerceSet,
	wire.Struct(new(ApplicationOptions), "*"),
	NewApplication,
)
