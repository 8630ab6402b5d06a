package gateway

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"commercemcp/internal/infra/telemetry"
)

// requestLoggingMiddleware tags every inbound method with a request id
// and logs its duration. Tool handlers see the same id on ctx.
func requestLoggingMiddleware(logger *zap.Logger) mcp.Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			ctx, meta := telemetry.EnsureRequestMeta(ctx)
			started := time.Now()
			result, err := next(ctx, method, req)

			fields := append(telemetry.RequestFields(meta),
				telemetry.MethodField(method),
				telemetry.DurationField(time.Since(started)),
			)
			if err != nil {
				logger.Warn("mcp request failed", append(fields, zap.Error(err))...)
				return result, err
			}
			logger.Debug("mcp request handled", fields...)
			return result, nil
		}
	}
}
