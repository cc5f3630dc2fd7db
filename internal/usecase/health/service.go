package health

import (
	"context"
	"sync"
	"time"
)

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

// DefaultCheckTimeout bounds each component check.
const DefaultCheckTimeout = 3 * time.Second

// Service coordinates health checks.
type Service struct {
	checks  map[string]Checker
	timeout time.Duration
}

// New creates a Service. backends maps backend names to their client
// checks, reported as "backend:<name>"; embedding can be nil.
func New(backends map[string]Checker, embedding Checker) *Service {
	s := &Service{checks: make(map[string]Checker, len(backends)+2), timeout: DefaultCheckTimeout}
	for name, c := range backends {
		s.checks["backend:"+name] = c
	}
	if embedding != nil {
		s.checks["embedding"] = embedding
	}
	return s
}

// WithCache adds the embedding cache store as the "cache" check.
func (s *Service) WithCache(c Checker) *Service {
	if c != nil {
		s.checks["cache"] = c
	}
	return s
}

// WithTimeout overrides DefaultCheckTimeout.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check runs every component check concurrently, each under its own
// timeout. All failing is Unhealthy, some failing is Degraded, and no
// components at all is Healthy.
func (s *Service) Check(ctx context.Context) Report {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		checks = make(map[string]CheckResult, len(s.checks))
	)
	for name, c := range s.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := s.run(ctx, c)
			mu.Lock()
			checks[name] = res
			mu.Unlock()
		}()
	}
	wg.Wait()

	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}

	status := Healthy
	switch {
	case failed == 0:
	case failed == len(checks):
		status = Unhealthy
	default:
		status = Degraded
	}
	return Report{Status: status, Checks: checks}
}

func (s *Service) run(ctx context.Context, c Checker) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := c.HealthCheck(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
