package gateway

import (
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"commercemcp/internal/domain"
	"commercemcp/internal/infra/telemetry"
)

const streamableHTTPProtocol = "MCP Streamable HTTP"

// Handler returns the HTTP surface: health at / and /health, metrics at
// /metrics and the stateless streamable MCP endpoint at the configured
// path, all behind a permissive CORS layer.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()

	health := telemetry.HealthHandler(telemetry.HealthInfo{
		Service:     g.opts.Name,
		Environment: g.opts.Environment,
		Protocol:    streamableHTTPProtocol,
		Endpoints: map[string]string{
			"health": domain.DefaultHealthPath,
			"mcp":    g.opts.HTTPPath,
		},
	}, g.opts.Clock)
	mux.Handle("GET /{$}", health)
	mux.Handle("GET "+domain.DefaultHealthPath, health)
	mux.Handle("GET "+domain.DefaultMetricsPath, telemetry.MetricsHandler(g.opts.Gatherer))

	server := g.server
	mux.Handle(g.opts.HTTPPath, mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{
		Stateless:    true,
		JSONResponse: true,
	}))

	return withCORS(mux)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := w.Header()
		header.Set("Access-Control-Allow-Origin", "*")
		header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		header.Set("Access-Control-Allow-Headers", "Content-Type, Mcp-Session-Id")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
