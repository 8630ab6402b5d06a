package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"commercemcp/internal/domain"
	"commercemcp/internal/infra/gateway"
	"commercemcp/internal/infra/tools"
)

// Application wires the commerce adapter and its MCP front end.
type Application struct {
	ctx       context.Context
	transport string
	httpAddr  string

	logger   *zap.Logger
	config   domain.Config
	registry *prometheus.Registry
	tools    *tools.Registry
	gateway  *gateway.Gateway
}

// ApplicationOptions captures dependencies and settings for Application.
type ApplicationOptions struct {
	Context      context.Context
	ServeConfig  ServeConfig
	Logger       *zap.Logger
	Config       domain.Config
	Registry     *prometheus.Registry
	ToolRegistry *tools.Registry
	Gateway      *gateway.Gateway
}

// NewApplication constructs the application runtime.
func NewApplication(opts ApplicationOptions) *Application {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	transport := opts.ServeConfig.Transport
	if transport == "" {
		transport = domain.TransportStdio
	}
	httpAddr := opts.ServeConfig.HTTPAddr
	if httpAddr == "" {
		port := opts.Config.Port
		if port == 0 {
			port = domain.DefaultPort
		}
		httpAddr = fmt.Sprintf(":%d", port)
	}
	return &Application{
		ctx:       ctx,
		transport: transport,
		httpAddr:  httpAddr,
		logger:    logger,
		config:    opts.Config,
		registry:  opts.Registry,
		tools:     opts.ToolRegistry,
		gateway:   opts.Gateway,
	}
}

// Run serves MCP on the configured transport and blocks until shutdown.
func (a *Application) Run() error {
	fields := []zap.Field{
		zap.String("environment", a.config.Environment),
		zap.String("transport", a.transport),
		zap.String("clientId", a.config.Upstream.ClientIDPrefix()),
	}
	if a.tools != nil {
		fields = append(fields, zap.Int("tools", len(a.tools.List())))
	}
	if a.transport == domain.TransportStreamableHTTP {
		fields = append(fields, zap.String("addr", a.httpAddr))
	}
	a.logger.Info("configuration loaded", fields...)

	return a.gateway.Run(a.ctx, a.transport, a.httpAddr)
}

// Gateway exposes the MCP front end, mainly for tests.
func (a *Application) Gateway() *gateway.Gateway {
	if a == nil {
		return nil
	}
	return a.gateway
}
