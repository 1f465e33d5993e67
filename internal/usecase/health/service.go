package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the server runs but upstream searches will fail.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// defaultProbeTimeout bounds a single upstream probe.
const defaultProbeTimeout = 5 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	upstream UpstreamChecker
	timeout  time.Duration
}

// New creates a Service. upstream can be nil, in which case only liveness is reported.
func New(upstream UpstreamChecker) *Service {
	return &Service{upstream: upstream, timeout: defaultProbeTimeout}
}

// WithTimeout overrides the upstream probe timeout.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{"server": CheckOK}

	if s.upstream != nil {
		probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		if err := s.upstream.HealthCheck(probeCtx); err != nil {
			checks["openfda"] = CheckError
		} else {
			checks["openfda"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
