package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"commercemcp/internal/buildinfo"
	"commercemcp/internal/domain"
	"commercemcp/internal/infra/telemetry"
	"commercemcp/internal/infra/tools"
)

// Options configure the MCP front end.
type Options struct {
	Name            string
	Version         string
	Environment     string
	HTTPPath        string
	Gatherer        prometheus.Gatherer
	ShutdownTimeout time.Duration
	Clock           func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Name == "" {
		o.Name = domain.ServiceName
	}
	if o.Version == "" {
		o.Version = buildinfo.Version
	}
	if o.Environment == "" {
		o.Environment = domain.DefaultEnvironment
	}
	if o.HTTPPath == "" {
		o.HTTPPath = domain.DefaultHTTPPath
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = domain.DefaultShutdownTimeout
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

// Gateway serves the tool registry over MCP.
type Gateway struct {
	opts     Options
	registry *tools.Registry
	server   *mcp.Server
	logger   *zap.Logger
}

func NewGateway(registry *tools.Registry, opts Options, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.withDefaults()
	logger = logger.Named("gateway")
	return &Gateway{
		opts:     opts,
		registry: registry,
		server:   NewServer(registry, opts, logger),
		logger:   logger,
	}
}

// NewServer builds the MCP server with every registry tool attached.
func NewServer(registry *tools.Registry, opts Options, logger *zap.Logger) *mcp.Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.withDefaults()
	server := mcp.NewServer(&mcp.Implementation{
		Name:    opts.Name,
		Version: opts.Version,
	}, &mcp.ServerOptions{
		HasTools: true,
	})
	server.AddReceivingMiddleware(requestLoggingMiddleware(logger))
	newToolRegistry(server, registry, logger).Apply()
	return server
}

func (g *Gateway) Server() *mcp.Server {
	return g.server
}

// Run serves on the named transport until ctx is canceled.
func (g *Gateway) Run(ctx context.Context, transport, addr string) error {
	switch transport {
	case "", domain.TransportStdio:
		return g.RunStdio(ctx)
	case domain.TransportStreamableHTTP:
		return g.RunHTTP(ctx, addr)
	default:
		return domain.E(domain.CodeInvalidConfig, "gateway.Run", fmt.Sprintf("unsupported transport %q", transport), nil)
	}
}

func (g *Gateway) RunStdio(ctx context.Context) error {
	g.logger.Info("gateway starting (stdio transport)", zap.Int("tools", len(g.registry.List())))
	err := g.server.Run(ctx, &mcp.StdioTransport{})
	if err != nil && (errors.Is(err, context.Canceled) || ctx.Err() != nil) {
		return nil
	}
	return err
}

func (g *Gateway) RunHTTP(ctx context.Context, addr string) error {
	if addr == "" {
		addr = fmt.Sprintf(":%d", domain.DefaultPort)
	}
	g.logger.Info("gateway starting (streamable http transport)",
		zap.String("addr", addr),
		zap.String("path", g.opts.HTTPPath),
		zap.String("environment", g.opts.Environment),
	)
	server := &http.Server{
		Addr:              addr,
		Handler:           g.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return telemetry.ServeHTTP(ctx, server, g.opts.ShutdownTimeout, g.logger)
}
