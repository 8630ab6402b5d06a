package domain

// UpstreamConfig locates and authenticates against the commerce API.
type UpstreamConfig struct {
	AuthBaseURL   string
	AuthTokenPath string
	APIBaseURL    string
	ClientID      string
	ClientSecret  string
	GrantType     string
}

// Config is the validated runtime configuration.
type Config struct {
	Environment string
	Port        int
	Upstream    UpstreamConfig
}

// ClientIDPrefix returns the part of the client id that is safe to log.
func (c UpstreamConfig) ClientIDPrefix() string {
	const visible = 8
	if len(c.ClientID) <= visible {
		return c.ClientID
	}
	return c.ClientID[:visible] + "..."
}
