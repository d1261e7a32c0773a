package ratelimit

import (
	"context"
	"time"
)

// CounterStore counts hits per client in fixed windows.
type CounterStore interface {
	Hit(ctx context.Context, scope, client string, window time.Duration, now time.Time) (int64, time.Duration, error)
}
