package app

import (
	"context"

	"go.uber.org/zap"

	"commercemcp/internal/infra/config"
)

// App is the entry point used by the binaries.
type App struct {
	logger *zap.Logger
}

// ServeConfig selects configuration sources and the MCP transport.
type ServeConfig struct {
	Config config.Source
	// Transport is stdio or streamable-http.
	Transport string
	// HTTPAddr defaults to :<PORT>.
	HTTPAddr string
	HTTPPath string
}

type ValidateConfig struct {
	Config config.Source
}

func New(logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		logger: logger,
	}
}

// Serve builds the application graph and blocks until ctx is canceled.
func (a *App) Serve(ctx context.Context, cfg ServeConfig) error {
	application, err := InitializeApplication(ctx, cfg, LoggingConfig{Logger: a.logger})
	if err != nil {
		return err
	}
	return application.Run()
}
