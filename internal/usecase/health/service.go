package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the opportunity source or the narrator is down.
	// Gating still works and fetches fall back to demo data.
	Degraded Status = "degraded"
	// Unhealthy indicates the usage store is down.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckDisabled indicates an optional component that is not configured.
	CheckDisabled CheckResult = "disabled"
)

// Component names in Report.Checks.
const (
	ComponentStore    = "store"
	ComponentSource   = "source"
	ComponentNarrator = "narrator"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	store    Pinger
	source   Pinger
	narrator NarratorChecker
}

// New creates a Service. source and narrator can be nil.
func New(store, source Pinger, narrator NarratorChecker) *Service {
	return &Service{store: store, source: source, narrator: narrator}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{
		ComponentStore:    probe(ctx, s.store.Ping),
		ComponentSource:   CheckDisabled,
		ComponentNarrator: CheckDisabled,
	}
	if s.source != nil {
		checks[ComponentSource] = probe(ctx, s.source.Ping)
	}
	if s.narrator != nil {
		checks[ComponentNarrator] = probe(ctx, s.narrator.HealthCheck)
	}

	status := Healthy
	switch {
	case checks[ComponentStore] == CheckError:
		status = Unhealthy
	case checks[ComponentSource] == CheckError, checks[ComponentNarrator] == CheckError:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}

func probe(ctx context.Context, fn func(context.Context) error) CheckResult {
	if err := fn(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
