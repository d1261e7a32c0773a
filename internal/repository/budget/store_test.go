package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/helpdesk/internal/db/memory"
)

func TestIncrBy_SetsTTLByKeyShape(t *testing.T) {
	type call struct {
		key string
		ttl time.Duration
		nx  bool
	}
	var calls []call
	ms := &mockStore{
		expireFn: func(_ context.Context, key string, ttl time.Duration, nx bool) error {
			calls = append(calls, call{key, ttl, nx})
			return nil
		},
	}
	s := New(ms, time.Hour, 24*time.Hour)
	ctx := context.Background()

	if err := s.IncrBy(ctx, "h:llm_budget:openai:daily:2026-03-01", 5); err != nil {
		t.Fatal(err)
	}
	if err := s.IncrBy(ctx, "h:llm_budget:openai:monthly:2026-03", 5); err != nil {
		t.Fatal(err)
	}

	if len(calls) != 2 {
		t.Fatalf("expire calls = %d", len(calls))
	}
	if calls[0].ttl != time.Hour || !calls[0].nx {
		t.Errorf("daily expire = %+v", calls[0])
	}
	if calls[1].ttl != 24*time.Hour || !calls[1].nx {
		t.Errorf("monthly expire = %+v", calls[1])
	}
}

func TestIncrBy_Errors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name string
		ms   *mockStore
	}{
		{"incr", &mockStore{incrByFn: func(context.Context, string, int64) (int64, error) { return 0, boom }}},
		{"expire", &mockStore{expireFn: func(context.Context, string, time.Duration, bool) error { return boom }}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.ms, 0, 0).IncrBy(context.Background(), "k:daily:x", 1)
			if !errors.Is(err, boom) {
				t.Errorf("error = %v, want wrapped boom", err)
			}
		})
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		name    string
		getFn   func(context.Context, string) ([]byte, error)
		want    int64
		wantErr bool
	}{
		{"missing is zero", nil, 0, false},
		{"value", func(context.Context, string) ([]byte, error) { return []byte("42"), nil }, 42, false},
		{"garbage", func(context.Context, string) ([]byte, error) { return []byte("x"), nil }, 0, true},
		{"store error", func(context.Context, string) ([]byte, error) { return nil, errors.New("down") }, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(&mockStore{getFn: tt.getFn}, 0, 0).Get(context.Background(), "k")
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRoundTrip_MemoryStore(t *testing.T) {
	ms := memory.NewStore()
	defer ms.Close()
	s := New(ms, 0, 0)
	ctx := context.Background()
	key := "h:llm_budget:openai:daily:2026-03-01"

	for range 3 {
		if err := s.IncrBy(ctx, key, 10); err != nil {
			t.Fatal(err)
		}
	}
	got, err := s.Get(ctx, key)
	if err != nil || got != 30 {
		t.Fatalf("Get = %d, %v", got, err)
	}
	ttl, err := ms.TTL(ctx, key)
	if err != nil || ttl <= 0 || ttl > DefaultDailyTTL {
		t.Errorf("TTL = %v, %v", ttl, err)
	}
}
