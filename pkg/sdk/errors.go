package openfda

import "github.com/kailas-cloud/openfda-mcp/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidArgument   = domain.ErrInvalidArgument
	ErrTimeout           = domain.ErrTimeout
	ErrUpstreamHTTP      = domain.ErrUpstreamHTTP
	ErrNetwork           = domain.ErrNetwork
	ErrMalformedResponse = domain.ErrMalformedResponse
	ErrUnknownTool       = domain.ErrUnknownTool
)

// UpstreamHTTPError carries the status code of a non-2xx openFDA response.
// Use errors.As() to extract it.
type UpstreamHTTPError = domain.UpstreamHTTPError
