package domain

import "time"

const (
	ServiceName    = "commerce-mcp"
	ServiceVersion = "1.0.0"

	DefaultEnvironment     = "beta"
	ProductionEnvironment  = "production"
	DefaultGrantType       = "client_credentials"
	DefaultPort            = 8080
	DefaultHTTPPath        = "/mcp"
	DefaultHealthPath      = "/health"
	DefaultMetricsPath     = "/metrics"
	DefaultUpstreamTimeout = 30 * time.Second
	CredentialRefreshSkew  = 5 * time.Minute
	DefaultShutdownTimeout = 5 * time.Second

	DefaultPageNumber = 1
	DefaultPageSize   = 10
	MaxPageSize       = 100
)

const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)
