package mcp

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kailas-cloud/openfda-mcp/internal/domain"
)

// Texts returned to the MCP client in place of a report.
const (
	timeoutText    = "Request timeout: FDA API is taking too long to respond. Please try again."
	networkText    = "Network error: Unable to connect to FDA API. Please check your internet connection."
	malformedText  = "Error: Unexpected response format from FDA API"
	unexpectedText = "An unexpected error occurred. Please try again. If the problem persists, contact support."
)

// Tool call outcomes, used as the metrics label.
const (
	outcomeOK              = "ok"
	outcomeInvalidArgument = "invalid_argument"
	outcomeTimeout         = "timeout"
	outcomeUpstreamHTTP    = "upstream_http"
	outcomeNetwork         = "network"
	outcomeMalformed       = "malformed_response"
	outcomeUnexpected      = "unexpected"
	outcomeUnknownTool     = "unknown_tool"
)

// errorHandler tries to turn a domain error into client text. Returns false if not handled.
type errorHandler func(err error) (outcome, text string, ok bool)

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		argumentHandler,
		sentinelHandler(domain.ErrTimeout, outcomeTimeout, timeoutText),
		upstreamHTTPHandler,
		sentinelHandler(domain.ErrNetwork, outcomeNetwork, networkText),
		sentinelHandler(domain.ErrMalformedResponse, outcomeMalformed, malformedText),
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, outcome, text string) errorHandler {
	return func(err error) (string, string, bool) {
		if !errors.Is(err, sentinel) {
			return "", "", false
		}
		return outcome, text, true
	}
}

// argumentHandler echoes the validation message after an "Error: " prefix.
func argumentHandler(err error) (string, string, bool) {
	if !errors.Is(err, domain.ErrInvalidArgument) {
		return "", "", false
	}
	var ae *domain.ArgumentError
	if errors.As(err, &ae) {
		return outcomeInvalidArgument, "Error: " + ae.Message, true
	}
	return outcomeInvalidArgument, "Error: " + domain.ErrInvalidArgument.Error(), true
}

// upstreamHTTPHandler reports the status code with a hint for the codes openFDA documents.
func upstreamHTTPHandler(err error) (string, string, bool) {
	var he *domain.UpstreamHTTPError
	if !errors.As(err, &he) {
		return "", "", false
	}
	return outcomeUpstreamHTTP, upstreamHTTPText(he.StatusCode), true
}

func upstreamHTTPText(status int) string {
	text := fmt.Sprintf("FDA API returned an error (HTTP %d)", status)
	switch {
	case status == http.StatusNotFound:
		text += ": Endpoint not found"
	case status == http.StatusTooManyRequests:
		text += ": Rate limit exceeded. Please try again later."
	case status >= http.StatusInternalServerError:
		text += ": FDA API server error. Please try again later."
	}
	return text
}
