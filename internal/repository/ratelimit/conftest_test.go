package ratelimit

import (
	"context"
	"time"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	incrByFn func(ctx context.Context, key string, val int64) (int64, error)
	expireFn func(ctx context.Context, key string, ttl time.Duration, nx bool) error
	ttlFn    func(ctx context.Context, key string) (time.Duration, error)
}

func (m *mockStore) IncrBy(ctx context.Context, key string, val int64) (int64, error) {
	if m.incrByFn != nil {
		return m.incrByFn(ctx, key, val)
	}
	return val, nil
}

func (m *mockStore) Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error {
	if m.expireFn != nil {
		return m.expireFn(ctx, key, ttl, nx)
	}
	return nil
}

func (m *mockStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	if m.ttlFn != nil {
		return m.ttlFn(ctx, key)
	}
	return -1, nil
}
