package completioncache

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/helpdesk/internal/db"
	"github.com/kailas-cloud/helpdesk/internal/domain"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

// mockCompleter implements domain.Completer for tests.
type mockCompleter struct {
	result    domain.Completion
	err       error
	calls     int
	healthErr error
}

func (m *mockCompleter) Complete(_ context.Context, _ domain.CompletionRequest) (domain.Completion, error) {
	m.calls++
	return m.result, m.err
}

func (m *mockCompleter) HealthCheck(context.Context) error { return m.healthErr }

func newTestCachedCompleter(t *testing.T, inner domain.Completer) (*CachedCompleter, *mockStore, *prometheus.CounterVec) {
	t.Helper()
	ms := &mockStore{}
	counter := prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "test_llm_cache_total", Help: "test"},
		[]string{"result"},
	)
	return New(inner, ms, "gpt-4", "t:", time.Hour, counter, zap.NewNop()), ms, counter
}

func testRequest(text string) domain.CompletionRequest {
	return domain.CompletionRequest{Messages: []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: "be helpful"},
		{Role: domain.RoleUser, Content: text},
	}}
}
