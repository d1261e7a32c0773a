// Package usage reports LLM token consumption.
package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/helpdesk/internal/domain/usage"
)

// Service handles usage reporting.
type Service struct {
	br  BudgetReader
	now func() time.Time
}

// New creates a Service. br can be nil (LLM disabled or no budget).
func New(br BudgetReader) *Service {
	return &Service{br: br, now: time.Now}
}

// GetReport builds the usage report for the window of period containing now.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	start, end := period.Bounds(s.now())

	var used, limit int64
	remaining := int64(-1)
	if s.br != nil {
		switch period {
		case domusage.PeriodMonth:
			used, limit, remaining = s.br.MonthlyUsed(), s.br.MonthlyLimit(), s.br.RemainingMonthly()
		default:
			used, limit, remaining = s.br.DailyUsed(), s.br.DailyLimit(), s.br.RemainingDaily()
		}
	}
	return domusage.NewReport(period, start, end, used, limit, remaining)
}
