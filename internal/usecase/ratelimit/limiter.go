// Package ratelimit enforces per-client request limits.
package ratelimit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/helpdesk/internal/domain"
	"github.com/kailas-cloud/helpdesk/internal/metrics"
)

// Window is the counting period for all limits.
const Window = time.Minute

// Limiter enforces per-scope requests-per-minute limits.
type Limiter struct {
	store  CounterStore
	limits map[string]int
	logger *zap.Logger
	now    func() time.Time
}

// New creates a Limiter. limits maps scope to requests per minute; scopes
// without a positive limit are unlimited.
func New(store CounterStore, limits map[string]int, logger *zap.Logger) *Limiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Limiter{store: store, limits: limits, logger: logger, now: time.Now}
}

// Allow records a request and returns a *domain.RateLimitError once client
// exceeds the scope's limit. Counter failures let the request through.
func (l *Limiter) Allow(ctx context.Context, scope, client string) error {
	limit := l.limits[scope]
	if limit <= 0 || l.store == nil {
		return nil
	}

	count, resetIn, err := l.store.Hit(ctx, scope, client, Window, l.now())
	if err != nil {
		l.logger.Warn("Rate limit check failed, allowing request",
			zap.String("scope", scope),
			zap.Error(err),
		)
		return nil
	}

	if count > int64(limit) {
		metrics.RateLimitedTotal.WithLabelValues(scope).Inc()
		return domain.NewRateLimited(resetIn)
	}
	return nil
}
