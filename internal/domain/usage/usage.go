// Package usage describes LLM token consumption against the configured budget.
package usage

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/helpdesk/internal/domain"
)

// Period is the budget window.
type Period string

// Budget windows.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod validates a period name; empty means day.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "", PeriodDay:
		return PeriodDay, nil
	case PeriodMonth:
		return PeriodMonth, nil
	default:
		return "", fmt.Errorf("%w: period must be %q or %q, got %q", domain.ErrInvalidUsagePeriod, PeriodDay, PeriodMonth, s)
	}
}

// Bounds returns the UTC window of p containing t.
func (p Period) Bounds(t time.Time) (start, end time.Time) {
	t = t.UTC()
	if p == PeriodMonth {
		start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	}
	start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// Report is LLM token usage for one budget window.
type Report struct {
	period    Period
	start     time.Time
	end       time.Time
	used      int64
	limit     int64 // 0 = unlimited
	remaining int64 // -1 = unlimited
}

// NewReport creates a usage report.
func NewReport(period Period, start, end time.Time, used, limit, remaining int64) Report {
	return Report{
		period:    period,
		start:     start,
		end:       end,
		used:      used,
		limit:     limit,
		remaining: remaining,
	}
}

// Period returns the budget window.
func (r *Report) Period() Period { return r.period }

// PeriodStart returns the window start.
func (r *Report) PeriodStart() time.Time { return r.start }

// PeriodEnd returns the window end, which is also when the budget resets.
func (r *Report) PeriodEnd() time.Time { return r.end }

// TokensUsed returns the tokens consumed in the window.
func (r *Report) TokensUsed() int64 { return r.used }

// TokensLimit returns the token cap, 0 when unlimited.
func (r *Report) TokensLimit() int64 { return r.limit }

// TokensRemaining returns the tokens left, -1 when unlimited.
func (r *Report) TokensRemaining() int64 { return r.remaining }

// Exhausted reports whether a limited budget is spent.
func (r *Report) Exhausted() bool { return r.limit > 0 && r.remaining <= 0 }
