package classification

import (
	"context"

	domclass "github.com/kailas-cloud/openfda-mcp/internal/domain/classification"
	"github.com/kailas-cloud/openfda-mcp/internal/domain/search/request"
)

// Fetcher retrieves classifications from the upstream API.
type Fetcher interface {
	Fetch(ctx context.Context, req *request.Request) (domclass.Response, error)
}
