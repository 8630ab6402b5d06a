package commerce

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"commercemcp/internal/domain"
	"commercemcp/internal/infra/telemetry"
)

// Authenticator obtains a fresh credential from the auth server.
type Authenticator interface {
	Authenticate(ctx context.Context) (domain.Credential, error)
}

// CredentialCache holds the single process-wide bearer credential.
// Concurrent callers that find it unusable share one refresh.
type CredentialCache struct {
	auth    Authenticator
	skew    time.Duration
	now     func() time.Time
	logger  *zap.Logger
	metrics domain.Metrics

	current atomic.Pointer[domain.Credential]
	group   singleflight.Group
}

type CacheOption func(*CredentialCache)

func WithClock(now func() time.Time) CacheOption {
	return func(c *CredentialCache) {
		if now != nil {
			c.now = now
		}
	}
}

func WithRefreshSkew(skew time.Duration) CacheOption {
	return func(c *CredentialCache) {
		c.skew = skew
	}
}

func NewCredentialCache(auth Authenticator, logger *zap.Logger, metrics domain.Metrics, opts ...CacheOption) *CredentialCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	cache := &CredentialCache{
		auth:    auth,
		skew:    domain.CredentialRefreshSkew,
		now:     time.Now,
		logger:  logger.Named("credentials"),
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache
}

// Credential returns the cached credential while it is usable and
// authenticates otherwise.
func (c *CredentialCache) Credential(ctx context.Context) (domain.Credential, error) {
	if cred := c.current.Load(); cred != nil && cred.UsableAt(c.now(), c.skew) {
		return *cred, nil
	}
	return c.refresh(ctx, false)
}

// Refresh authenticates unconditionally and replaces the cached credential.
func (c *CredentialCache) Refresh(ctx context.Context) (domain.Credential, error) {
	return c.refresh(ctx, true)
}

// Invalidate drops the cached credential if it still carries token, so
// the next call authenticates. A credential stored by a newer refresh is
// kept. An empty token drops whatever is cached.
func (c *CredentialCache) Invalidate(token string) bool {
	cred := c.current.Load()
	if cred == nil || (token != "" && cred.Token != token) {
		return false
	}
	if !c.current.CompareAndSwap(cred, nil) {
		return false
	}
	c.logger.Debug("credential invalidated")
	return true
}

func (c *CredentialCache) refresh(ctx context.Context, force bool) (domain.Credential, error) {
	key := "credential"
	if force {
		key = "credential:force"
	}
	ch := c.group.DoChan(key, func() (any, error) {
		if !force {
			if cred := c.current.Load(); cred != nil && cred.UsableAt(c.now(), c.skew) {
				return *cred, nil
			}
		}
		cred, err := c.auth.Authenticate(context.WithoutCancel(ctx))
		c.metrics.ObserveCredentialRefresh(err)
		if err != nil {
			c.logger.Warn("credential refresh failed", zap.Error(err))
			return domain.Credential{}, err
		}
		c.current.Store(&cred)
		c.logger.Info("credential refreshed",
			zap.Time("expiresAt", cred.ExpiresAt()),
			zap.Int64("expiresIn", cred.ExpiresInSeconds()),
		)
		return cred, nil
	})

	select {
	case <-ctx.Done():
		return domain.Credential{}, domain.E(domain.CodeCanceled, "credentials.refresh", "", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return domain.Credential{}, res.Err
		}
		return res.Val.(domain.Credential), nil
	}
}
