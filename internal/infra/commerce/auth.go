package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"commercemcp/internal/domain"
)

const maxResponseBytes = 16 << 20

// ClientCredentialsAuth exchanges the configured client id and secret
// for an access token.
type ClientCredentialsAuth struct {
	endpoint     string
	clientID     string
	clientSecret string
	grantType    string
	httpClient   *http.Client
	now          func() time.Time
	metrics      domain.Metrics
	logger       *zap.Logger
}

func NewClientCredentialsAuth(cfg domain.UpstreamConfig, httpClient *http.Client, metrics domain.Metrics, logger *zap.Logger) *ClientCredentialsAuth {
	if logger == nil {
		logger = zap.NewNop()
	}
	grant := cfg.GrantType
	if grant == "" {
		grant = domain.DefaultGrantType
	}
	return &ClientCredentialsAuth{
		endpoint:     strings.TrimRight(cfg.AuthBaseURL, "/") + cfg.AuthTokenPath,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		grantType:    grant,
		httpClient:   httpClient,
		now:          time.Now,
		metrics:      metrics,
		logger:       logger.Named("auth"),
	}
}

// Authenticate posts the client credentials and returns the issued token.
// The auth server expects the form body with a text/plain content type.
func (a *ClientCredentialsAuth) Authenticate(ctx context.Context) (domain.Credential, error) {
	const op = "commerce.Authenticate"

	body := url.Values{
		"client_id":     {a.clientID},
		"client_secret": {a.clientSecret},
		"grant_type":    {a.grantType},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, strings.NewReader(body))
	if err != nil {
		return domain.Credential{}, domain.E(domain.CodeUnauthenticated, op, "Authentication failed: "+err.Error(), err)
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Accept", "application/json")

	issuedAt := a.now()
	started := time.Now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.observe(0, started, err)
		a.logger.Warn("token request failed", zap.Error(err))
		return domain.Credential{}, domain.E(domain.CodeUnauthenticated, op, "Authentication failed: "+requestErrorMessage(err), err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	a.observe(resp.StatusCode, started, err)
	if err != nil {
		return domain.Credential{}, domain.E(domain.CodeUnauthenticated, op, "Authentication failed: "+requestErrorMessage(err), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		failure := &domain.Error{
			Code:    domain.CodeUnauthenticated,
			Op:      op,
			Message: "Authentication failed: " + upstreamMessage(payload, resp.StatusCode),
			Status:  resp.StatusCode,
		}
		a.logger.Warn("token request rejected", zap.Int("status", resp.StatusCode))
		return domain.Credential{}, failure
	}

	var token oauth2.Token
	if err := json.Unmarshal(payload, &token); err != nil {
		return domain.Credential{}, domain.E(domain.CodeUnauthenticated, op, "Authentication failed: invalid token response", domain.ErrMalformedResponse)
	}
	if token.AccessToken == "" {
		return domain.Credential{}, domain.E(domain.CodeUnauthenticated, op, "Authentication failed: token response has no access_token", domain.ErrMalformedResponse)
	}

	return domain.Credential{
		Token:    token.AccessToken,
		IssuedAt: issuedAt,
		TTL:      time.Duration(token.ExpiresIn) * time.Second,
	}, nil
}

func (a *ClientCredentialsAuth) observe(status int, started time.Time, err error) {
	if a.metrics == nil {
		return
	}
	a.metrics.ObserveUpstreamRequest(domain.UpstreamMetric{
		Operation: "authenticate",
		Status:    status,
		Duration:  time.Since(started),
		Err:       err,
	})
}

// upstreamMessage prefers the message carried in an error body and
// falls back to a status description.
func upstreamMessage(payload []byte, status int) string {
	if gjson.ValidBytes(payload) {
		parsed := gjson.ParseBytes(payload)
		for _, path := range []string{"message", "error_description", "error"} {
			if value := parsed.Get(path); value.Type == gjson.String && value.String() != "" {
				return value.String()
			}
		}
	}
	return fmt.Sprintf("Request failed with status code %d", status)
}
