package commerce

import (
	"context"
	"errors"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"commercemcp/internal/domain"
	"commercemcp/internal/infra/telemetry"
)

type credentialSource interface {
	Credential(ctx context.Context) (domain.Credential, error)
}

// bearerTransport attaches the current access token to every request.
type bearerTransport struct {
	source credentialSource
	base   http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cred, err := t.source.Credential(req.Context())
	if err != nil {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, err
	}
	clone := req.Clone(req.Context())
	token := &oauth2.Token{AccessToken: cred.Token, TokenType: "Bearer"}
	token.SetAuthHeader(clone)
	return t.base.RoundTrip(clone)
}

// Request describes one call against the commerce API.
type Request struct {
	// Operation names the call in logs and metrics.
	Operation string
	Method    string
	Path      string
	Query     url.Values
	Form      url.Values
	// FormOrder fixes the order of the leading form fields; the rest
	// follow sorted by key.
	FormOrder []string
}

// Transport issues authenticated requests to the commerce API and maps
// every failure onto domain errors.
type Transport struct {
	baseURL string
	client  *http.Client
	cache   *CredentialCache
	metrics domain.Metrics
	logger  *zap.Logger
}

func NewTransport(baseURL string, base http.RoundTripper, timeout time.Duration, cache *CredentialCache, metrics domain.Metrics, logger *zap.Logger) *Transport {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	if base == nil {
		base = http.DefaultTransport
	}
	if timeout <= 0 {
		timeout = domain.DefaultUpstreamTimeout
	}
	return &Transport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   timeout,
			Transport: &bearerTransport{source: cache, base: base},
		},
		cache:   cache,
		metrics: metrics,
		logger:  logger.Named("transport"),
	}
}

// Do sends the request and returns the response body of a 2xx reply.
func (t *Transport) Do(ctx context.Context, r Request) ([]byte, error) {
	op := "commerce." + r.Operation

	target := t.baseURL + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}
	var body io.Reader
	if r.Form != nil {
		body = strings.NewReader(encodeForm(r.Form, r.FormOrder))
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, domain.E(domain.CodeUpstreamRequest, op, "", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.Form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	logger := telemetry.LoggerWithRequest(ctx, t.logger).With(telemetry.OperationField(r.Operation))
	started := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		t.observe(r.Operation, 0, started, err)
		var authErr *domain.Error
		if errors.As(err, &authErr) {
			return nil, authErr
		}
		logger.Warn("upstream request failed", zap.Error(err))
		return nil, domain.E(domain.CodeUpstreamRequest, op, requestErrorMessage(err), err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	t.observe(r.Operation, resp.StatusCode, started, err)
	if err != nil {
		return nil, domain.E(domain.CodeUpstreamRequest, op, requestErrorMessage(err), err)
	}

	logger.Debug("upstream response",
		telemetry.StatusField(resp.StatusCode),
		telemetry.DurationField(time.Since(started)),
	)

	if resp.StatusCode == http.StatusUnauthorized {
		t.cache.Invalidate(sentToken(resp))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.Error{
			Code:    domain.CodeUpstreamRequest,
			Op:      op,
			Message: upstreamMessage(payload, resp.StatusCode),
			Status:  resp.StatusCode,
		}
	}
	if !gjson.ValidBytes(payload) {
		return nil, &domain.Error{
			Code:    domain.CodeUpstreamRequest,
			Op:      op,
			Message: "invalid JSON in upstream response",
			Status:  resp.StatusCode,
			Cause:   domain.ErrMalformedResponse,
		}
	}
	return payload, nil
}

func (t *Transport) observe(operation string, status int, started time.Time, err error) {
	t.metrics.ObserveUpstreamRequest(domain.UpstreamMetric{
		Operation: operation,
		Status:    status,
		Duration:  time.Since(started),
		Err:       err,
	})
}

// sentToken reports the bearer token the request carried, or "" when the
// response does not link back to it.
func sentToken(resp *http.Response) string {
	if resp.Request == nil {
		return ""
	}
	token, ok := strings.CutPrefix(resp.Request.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return token
}

func encodeForm(form url.Values, order []string) string {
	if len(order) == 0 {
		return form.Encode()
	}
	var buf strings.Builder
	seen := make(map[string]bool, len(order))
	write := func(key string) {
		for _, value := range form[key] {
			if buf.Len() > 0 {
				buf.WriteByte('&')
			}
			buf.WriteString(url.QueryEscape(key))
			buf.WriteByte('=')
			buf.WriteString(url.QueryEscape(value))
		}
	}
	for _, key := range order {
		if seen[key] {
			continue
		}
		seen[key] = true
		write(key)
	}
	for _, key := range slices.Sorted(maps.Keys(form)) {
		if !seen[key] {
			write(key)
		}
	}
	return buf.String()
}

// requestErrorMessage strips the method and URL that net/http prepends.
func requestErrorMessage(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return "upstream request timed out"
		}
		return urlErr.Err.Error()
	}
	return err.Error()
}
