package app

import (
	"context"

	"go.uber.org/zap"

	"commercemcp/internal/domain"
	"commercemcp/internal/infra/config"
)

// ValidateConfig loads and checks configuration without contacting the
// upstream API.
func (a *App) ValidateConfig(ctx context.Context, cfg ValidateConfig) (domain.Config, error) {
	logger := NewLogger(NewLogging(LoggingConfig{Logger: a.logger}))

	loaded, err := config.NewLoader(logger).Load(ctx, cfg.Config)
	if err != nil {
		return domain.Config{}, err
	}

	logger.Info("configuration validated",
		zap.String("environment", loaded.Environment),
		zap.String("authBaseUrl", loaded.Upstream.AuthBaseURL),
		zap.String("apiBaseUrl", loaded.Upstream.APIBaseURL),
		zap.String("clientId", loaded.Upstream.ClientIDPrefix()),
	)
	return loaded, nil
}
