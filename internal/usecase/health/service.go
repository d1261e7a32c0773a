package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	llm       LLMChecker
	knowledge KnowledgeCounter
}

// New creates a Service. llm and knowledge can be nil.
func New(db DBPinger, llm LLMChecker, knowledge KnowledgeCounter) *Service {
	return &Service{db: db, llm: llm, knowledge: knowledge}
}

// Check runs health checks against all components.
// The database is required: its failure makes the service unhealthy.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks["database"] = result(s.db.Ping(ctx))

	if s.llm != nil {
		checks["llm"] = result(s.llm.HealthCheck(ctx))
	}

	if s.knowledge != nil {
		if s.knowledge.TopicCount() > 0 {
			checks["knowledge"] = CheckOK
		} else {
			checks["knowledge"] = CheckError
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks["database"] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
