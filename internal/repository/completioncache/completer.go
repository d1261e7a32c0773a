// Package completioncache memoizes LLM completions in the key-value store.
package completioncache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/helpdesk/internal/db"
	"github.com/kailas-cloud/helpdesk/internal/domain"
)

// store is the consumer interface for the completion cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedCompleter caches completions keyed by model and prompt.
type CachedCompleter struct {
	inner      domain.Completer
	store      store
	model      string
	prefix     string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.Completer,
	s store,
	model, prefix string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedCompleter {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedCompleter{
		inner:      inner,
		store:      s,
		model:      model,
		prefix:     prefix,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Complete returns a cached completion or calls the inner completer.
// Cache hit: token counts are zero (nothing was spent).
func (c *CachedCompleter) Complete(ctx context.Context, req domain.CompletionRequest) (domain.Completion, error) {
	key, err := c.cacheKey(req)
	if err != nil {
		return domain.Completion{}, err
	}

	if content, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return domain.Completion{Content: content}, nil
	}

	c.incCache("miss")

	result, err := c.inner.Complete(ctx, req)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("complete: %w", err)
	}

	if result.Content != "" {
		c.putToCache(ctx, key, result.Content)
	}
	return result, nil
}

// HealthCheck delegates to the inner completer when it supports it.
func (c *CachedCompleter) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

func (c *CachedCompleter) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedCompleter) cacheKey(req domain.CompletionRequest) (string, error) {
	payload, err := json.Marshal(req.Messages)
	if err != nil {
		return "", fmt.Errorf("marshal prompt: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(c.model))
	h.Write([]byte{0})
	h.Write(payload)
	return c.prefix + "llm_cache:" + hex.EncodeToString(h.Sum(nil)), nil
}

func (c *CachedCompleter) getFromCache(ctx context.Context, key string) (string, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached completion", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	if len(data) == 0 {
		return "", false
	}
	return string(data), true
}

func (c *CachedCompleter) putToCache(ctx context.Context, key, content string) {
	if c.ttl <= 0 {
		return
	}
	if err := c.store.SetWithTTL(ctx, key, []byte(content), c.ttl); err != nil {
		c.logger.Warn("Failed to cache completion", zap.String("key", key), zap.Error(err))
	}
}
