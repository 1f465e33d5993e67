package health

import "context"

// UpstreamChecker checks openFDA availability.
type UpstreamChecker interface {
	HealthCheck(ctx context.Context) error
}
