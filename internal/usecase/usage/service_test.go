package usage

import (
	"context"
	"testing"
	"time"

	domusage "github.com/kailas-cloud/helpdesk/internal/domain/usage"
)

// --- Mock ---

type mockBudgetReader struct {
	dailyLimit       int64
	monthlyLimit     int64
	dailyUsed        int64
	monthlyUsed      int64
	remainingDaily   int64
	remainingMonthly int64
}

func (m *mockBudgetReader) DailyLimit() int64       { return m.dailyLimit }
func (m *mockBudgetReader) MonthlyLimit() int64     { return m.monthlyLimit }
func (m *mockBudgetReader) DailyUsed() int64        { return m.dailyUsed }
func (m *mockBudgetReader) MonthlyUsed() int64      { return m.monthlyUsed }
func (m *mockBudgetReader) RemainingDaily() int64   { return m.remainingDaily }
func (m *mockBudgetReader) RemainingMonthly() int64 { return m.remainingMonthly }

var testNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func newTestService(br BudgetReader) *Service {
	s := New(br)
	s.now = func() time.Time { return testNow }
	return s
}

// --- Tests ---

func TestGetReport_DailyPeriod(t *testing.T) {
	br := &mockBudgetReader{
		dailyLimit:       10000,
		dailyUsed:        3000,
		remainingDaily:   7000,
		monthlyLimit:     100000,
		monthlyUsed:      50000,
		remainingMonthly: 50000,
	}
	r := newTestService(br).GetReport(context.Background(), domusage.PeriodDay)

	if r.Period() != domusage.PeriodDay {
		t.Errorf("expected period %q, got %q", domusage.PeriodDay, r.Period())
	}
	if want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC); !r.PeriodStart().Equal(want) {
		t.Errorf("period start = %v, want %v", r.PeriodStart(), want)
	}
	if want := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC); !r.PeriodEnd().Equal(want) {
		t.Errorf("period end = %v, want %v", r.PeriodEnd(), want)
	}
	if r.TokensLimit() != 10000 || r.TokensRemaining() != 7000 || r.TokensUsed() != 3000 {
		t.Errorf("tokens = %d/%d/%d", r.TokensUsed(), r.TokensLimit(), r.TokensRemaining())
	}
	if r.Exhausted() {
		t.Error("budget should not be exhausted")
	}
}

func TestGetReport_MonthlyPeriod(t *testing.T) {
	br := &mockBudgetReader{
		monthlyLimit:     100000,
		monthlyUsed:      80000,
		remainingMonthly: 20000,
	}
	r := newTestService(br).GetReport(context.Background(), domusage.PeriodMonth)

	if want := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC); !r.PeriodEnd().Equal(want) {
		t.Errorf("period end = %v, want %v", r.PeriodEnd(), want)
	}
	if r.TokensLimit() != 100000 || r.TokensUsed() != 80000 {
		t.Errorf("tokens = %d/%d", r.TokensUsed(), r.TokensLimit())
	}
}

func TestGetReport_NilBudgetReader(t *testing.T) {
	r := newTestService(nil).GetReport(context.Background(), domusage.PeriodDay)

	if r.TokensLimit() != 0 || r.TokensRemaining() != -1 {
		t.Errorf("unlimited report = %d/%d", r.TokensLimit(), r.TokensRemaining())
	}
	if r.Exhausted() {
		t.Error("nil budget reader should not be exhausted")
	}
}

func TestGetReport_Exhausted(t *testing.T) {
	br := &mockBudgetReader{
		dailyLimit:     5000,
		dailyUsed:      5000,
		remainingDaily: 0,
	}
	r := newTestService(br).GetReport(context.Background(), domusage.PeriodDay)

	if !r.Exhausted() {
		t.Error("budget should be exhausted when remaining is 0")
	}
}
