package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument signals bad tool arguments (limit format, query length).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrTimeout signals that the upstream API did not answer within the retry budget.
	ErrTimeout = errors.New("upstream timeout")
	// ErrUpstreamHTTP signals a non-2xx upstream response.
	ErrUpstreamHTTP = errors.New("upstream http error")
	// ErrNetwork signals a connection-level failure other than a timeout.
	ErrNetwork = errors.New("network error")
	// ErrMalformedResponse signals a 2xx response with an unexpected body shape.
	ErrMalformedResponse = errors.New("malformed upstream response")
	// ErrUnknownTool signals an invocation of a tool this server does not provide.
	ErrUnknownTool = errors.New("unknown tool")
)

// UpstreamHTTPError wraps ErrUpstreamHTTP with the upstream status code.
type UpstreamHTTPError struct {
	StatusCode int
}

func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf("%s: status %d", ErrUpstreamHTTP.Error(), e.StatusCode)
}

func (e *UpstreamHTTPError) Unwrap() error { return ErrUpstreamHTTP }

// NewUpstreamHTTPError creates an upstream status error.
func NewUpstreamHTTPError(statusCode int) error {
	return &UpstreamHTTPError{StatusCode: statusCode}
}

// ArgumentError wraps ErrInvalidArgument with a caller-facing message.
type ArgumentError struct {
	Message string
}

func (e *ArgumentError) Error() string {
	return ErrInvalidArgument.Error() + ": " + e.Message
}

func (e *ArgumentError) Unwrap() error { return ErrInvalidArgument }

// InvalidArgument creates an argument error with the given message.
func InvalidArgument(format string, args ...any) error {
	return &ArgumentError{Message: fmt.Sprintf(format, args...)}
}

// UnknownTool wraps ErrUnknownTool with the requested tool name.
func UnknownTool(name string) error {
	return fmt.Errorf("%w: %s", ErrUnknownTool, name)
}
