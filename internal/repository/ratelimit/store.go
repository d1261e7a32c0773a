// Package ratelimit keeps fixed-window request counters in the key-value store.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/helpdesk/internal/domain"
)

// store is the consumer interface for rate-limit counters (ISP).
type store interface {
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// Store implements usecase/ratelimit.CounterStore on top of INCRBY + EXPIRE NX.
type Store struct {
	store  store
	prefix string
}

// New creates a rate-limit counter store. An empty prefix uses domain.KeyPrefix.
func New(s store, prefix string) *Store {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	return &Store{store: s, prefix: prefix}
}

// Hit counts one request for client in the window containing now.
// It returns the count so far and the time left until the window resets.
func (s *Store) Hit(
	ctx context.Context, scope, client string, window time.Duration, now time.Time,
) (int64, time.Duration, error) {
	if window <= 0 {
		return 0, 0, fmt.Errorf("ratelimit: window must be positive, got %v", window)
	}
	slot := now.UnixNano() / int64(window)
	key := fmt.Sprintf("%sratelimit:%s:%s:%d", s.prefix, scope, client, slot)

	count, err := s.store.IncrBy(ctx, key, 1)
	if err != nil {
		return 0, 0, fmt.Errorf("ratelimit INCRBY %s: %w", key, err)
	}

	// Expire only on first hit so the window never slides.
	if err := s.store.Expire(ctx, key, window, true); err != nil {
		return 0, 0, fmt.Errorf("ratelimit EXPIRE %s: %w", key, err)
	}

	resetIn := time.Duration((slot+1)*int64(window) - now.UnixNano())
	if ttl, err := s.store.TTL(ctx, key); err == nil && ttl > 0 && ttl < resetIn {
		resetIn = ttl
	}
	return count, resetIn, nil
}
