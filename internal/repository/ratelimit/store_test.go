package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kailas-cloud/helpdesk/internal/db/memory"
)

var windowStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestHit_KeyAndExpireNX(t *testing.T) {
	var (
		incrKey   string
		expireTTL time.Duration
		expireNX  bool
	)
	ms := &mockStore{
		incrByFn: func(_ context.Context, key string, val int64) (int64, error) {
			incrKey = key
			return 3, nil
		},
		expireFn: func(_ context.Context, _ string, ttl time.Duration, nx bool) error {
			expireTTL, expireNX = ttl, nx
			return nil
		},
	}
	s := New(ms, "t:")
	now := windowStart.Add(15 * time.Second)

	count, resetIn, err := s.Hit(context.Background(), "chat", "1.2.3.4", time.Minute, now)
	if err != nil {
		t.Fatalf("Hit: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
	slot := windowStart.UnixNano() / int64(time.Minute)
	want := "t:ratelimit:chat:1.2.3.4:" + itoa(slot)
	if incrKey != want {
		t.Errorf("key = %q, want %q", incrKey, want)
	}
	if expireTTL != time.Minute || !expireNX {
		t.Errorf("expire = %v nx=%v", expireTTL, expireNX)
	}
	if resetIn != 45*time.Second {
		t.Errorf("resetIn = %v, want 45s", resetIn)
	}
}

func TestHit_UsesShorterStoreTTL(t *testing.T) {
	ms := &mockStore{
		ttlFn: func(context.Context, string) (time.Duration, error) { return 10 * time.Second, nil },
	}
	_, resetIn, err := New(ms, "t:").Hit(context.Background(), "chat", "c", time.Minute, windowStart)
	if err != nil {
		t.Fatalf("Hit: %v", err)
	}
	if resetIn != 10*time.Second {
		t.Errorf("resetIn = %v, want 10s", resetIn)
	}
}

func TestHit_Errors(t *testing.T) {
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
			_, _, err := New(tt.ms, "t:").Hit(context.Background(), "chat", "c", time.Minute, windowStart)
			if !errors.Is(err, boom) {
				t.Fatalf("expected boom, got %v", err)
			}
		})
	}
}

func TestHit_InvalidWindow(t *testing.T) {
	if _, _, err := New(&mockStore{}, "").Hit(context.Background(), "chat", "c", 0, windowStart); err == nil {
		t.Fatal("expected error for zero window")
	}
}

func TestHit_MemoryStoreWindows(t *testing.T) {
	s := New(memory.NewStore(), "t:")
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		count, _, err := s.Hit(ctx, "chat", "c", time.Minute, windowStart.Add(time.Duration(i)*time.Second))
		if err != nil {
			t.Fatalf("Hit: %v", err)
		}
		if count != i {
			t.Fatalf("count = %d, want %d", count, i)
		}
	}

	count, _, err := s.Hit(ctx, "chat", "c", time.Minute, windowStart.Add(time.Minute))
	if err != nil {
		t.Fatalf("Hit: %v", err)
	}
	if count != 1 {
		t.Errorf("next window count = %d, want 1", count)
	}

	other, _, _ := s.Hit(ctx, "feedback", "c", time.Minute, windowStart)
	if other != 1 {
		t.Errorf("scopes must not share counters, got %d", other)
	}
}

func itoa(n int64) string {
	return fmt.Sprint(n)
}
