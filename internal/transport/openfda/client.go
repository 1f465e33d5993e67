package openfda

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/kailas-cloud/openfda-mcp/internal/domain"
	"github.com/kailas-cloud/openfda-mcp/internal/domain/classification"
	"github.com/kailas-cloud/openfda-mcp/internal/domain/retry"
	"github.com/kailas-cloud/openfda-mcp/internal/domain/search/request"
	"github.com/kailas-cloud/openfda-mcp/internal/metrics"
)

// ClassificationPath is the device classification endpoint relative to the base URL.
const ClassificationPath = "/device/classification.json"

// maxErrorBody bounds how much of a non-2xx body is read for logging.
const maxErrorBody = 4 << 10

// Config holds the openFDA client settings.
type Config struct {
	BaseURL   string
	Timeout   time.Duration // per attempt
	Policy    retry.Policy
	UserAgent string
	Logger    *zap.Logger
}

// Client fetches device classifications from openFDA.
// Safe for concurrent use: per-call retry state lives in the request context.
type Client struct {
	http      *retryablehttp.Client
	endpoint  string
	policy    retry.Policy
	userAgent string
	logger    *zap.Logger
}

// NewClient creates an openFDA client.
func NewClient(cfg *Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		endpoint:  strings.TrimRight(cfg.BaseURL, "/") + ClassificationPath,
		policy:    cfg.Policy,
		userAgent: cfg.UserAgent,
		logger:    logger,
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient.Timeout = cfg.Timeout
	base := rc.HTTPClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	rc.HTTPClient.Transport = &bufferedTransport{base: base}
	rc.RetryMax = cfg.Policy.Retries()
	rc.RetryWaitMin = cfg.Policy.Delay
	rc.RetryWaitMax = cfg.Policy.Delay
	rc.CheckRetry = c.checkRetry
	rc.Backoff = c.backoff
	rc.ErrorHandler = giveUp
	rc.Logger = &leveledLogger{s: logger.Sugar()}
	c.http = rc

	return c
}

// callState counts attempts for one Fetch. CheckRetry runs sequentially within a call.
type callState struct {
	attempts int
}

type callStateKey struct{}

func stateFrom(ctx context.Context) *callState {
	if s, ok := ctx.Value(callStateKey{}).(*callState); ok {
		return s
	}
	return &callState{}
}

// Fetch runs one classification search, retrying timeouts per the policy.
func (c *Client) Fetch(ctx context.Context, req *request.Request) (classification.Response, error) {
	state := &callState{}
	ctx = context.WithValue(ctx, callStateKey{}, state)

	start := time.Now()
	resp, err := c.fetch(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("error").Inc()
		metrics.UpstreamRequestDuration.WithLabelValues("error").Observe(duration.Seconds())
		metrics.UpstreamErrorsTotal.WithLabelValues(errorType(err)).Inc()
		return classification.Response{}, err
	}

	metrics.UpstreamRequestsTotal.WithLabelValues("success").Inc()
	metrics.UpstreamRequestDuration.WithLabelValues("success").Observe(duration.Seconds())
	return resp, nil
}

func (c *Client) fetch(ctx context.Context, req *request.Request) (classification.Response, error) {
	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(req), nil)
	if err != nil {
		return classification.Response{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return classification.Response{}, classifyTransportError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("openFDA returned error status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(bytes.TrimSpace(body))),
		)
		return classification.Response{}, domain.NewUpstreamHTTPError(resp.StatusCode)
	}

	// Already buffered by bufferedTransport.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return classification.Response{}, classifyTransportError(ctx, fmt.Errorf("read body: %w", err))
	}

	return decode(body)
}

// searchURL builds the GET URL: limit is always sent, search only when non-empty.
func (c *Client) searchURL(req *request.Request) string {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(req.Limit()))
	if req.HasQuery() {
		q.Set("search", req.Query())
	}
	return c.endpoint + "?" + q.Encode()
}

// decode turns a 2xx body into a typed response. Anything that is not an
// object with a results key is malformed; a null results value is empty.
func decode(body []byte) (classification.Response, error) {
	var top map[string]jsoniter.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return classification.Response{}, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}
	rawResults, ok := top[resultsKey]
	if !ok {
		return classification.Response{}, fmt.Errorf("%w: missing results", domain.ErrMalformedResponse)
	}

	var meta *metaDTO
	if rawMeta := top[metaKey]; !isNull(rawMeta) {
		meta = &metaDTO{}
		if err := json.Unmarshal(rawMeta, meta); err != nil {
			return classification.Response{}, fmt.Errorf("%w: meta: %w", domain.ErrMalformedResponse, err)
		}
	}

	var dtos []recordDTO
	if !isNull(rawResults) {
		if err := json.Unmarshal(rawResults, &dtos); err != nil {
			return classification.Response{}, fmt.Errorf("%w: results: %w", domain.ErrMalformedResponse, err)
		}
	}

	records := make([]classification.Record, 0, len(dtos))
	for i := range dtos {
		records = append(records, dtos[i].toDomain())
	}
	return classification.NewResponse(records, meta.total()), nil
}

// isNull reports whether a raw value is absent or JSON null.
func isNull(raw jsoniter.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// checkRetry feeds every attempt outcome to the policy. Status errors and
// non-timeout transport errors end the call immediately.
func (c *Client) checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}

	metrics.UpstreamAttemptsTotal.WithLabelValues(attemptOutcome(resp, err)).Inc()

	state := stateFrom(ctx)
	state.attempts++

	decision := c.policy.Next(state.attempts, err)
	if decision.Action == retry.Retry {
		c.logger.Warn("openFDA request timed out, retrying",
			zap.Int("attempt", state.attempts),
			zap.Int("max_attempts", c.policy.MaxAttempts),
			zap.Duration("delay", decision.Delay),
			zap.Error(err),
		)
		return true, nil
	}
	return false, nil
}

// backoff is the fixed delay between attempts.
func (c *Client) backoff(_, _ time.Duration, _ int, _ *http.Response) time.Duration {
	return c.policy.Delay
}

// giveUp surfaces the last attempt error with the number of attempts made.
func giveUp(resp *http.Response, err error, numTries int) (*http.Response, error) {
	if resp != nil {
		_ = resp.Body.Close()
	}
	return nil, fmt.Errorf("giving up after %d attempt(s): %w", numTries, err)
}

// HealthCheck issues a single limit=1 search without retries.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?limit=1", http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.HTTPClient.Do(req)
	if err != nil {
		return classifyTransportError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.NewUpstreamHTTPError(resp.StatusCode)
	}
	return nil
}

// classifyTransportError maps a failed round trip onto the domain taxonomy.
// A cancelled call context is returned untouched.
func classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return err
	}
	if retry.IsTimeout(err) {
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrNetwork, err)
}

func attemptOutcome(resp *http.Response, err error) string {
	switch {
	case err != nil && retry.IsTimeout(err):
		return "timeout"
	case err != nil:
		return "network"
	case resp != nil && (resp.StatusCode < 200 || resp.StatusCode > 299):
		return "http_error"
	default:
		return "ok"
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrTimeout):
		return "timeout"
	case errors.Is(err, domain.ErrNetwork):
		return "network"
	case errors.Is(err, domain.ErrUpstreamHTTP):
		return "http_status"
	case errors.Is(err, domain.ErrMalformedResponse):
		return "malformed_response"
	default:
		return "other"
	}
}
