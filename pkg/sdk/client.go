package openfda

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	domclass "github.com/kailas-cloud/openfda-mcp/internal/domain/classification"
	"github.com/kailas-cloud/openfda-mcp/internal/domain/retry"
	"github.com/kailas-cloud/openfda-mcp/internal/domain/search/request"
	mcptransport "github.com/kailas-cloud/openfda-mcp/internal/transport/mcp"
	fdatransport "github.com/kailas-cloud/openfda-mcp/internal/transport/openfda"
	classificationuc "github.com/kailas-cloud/openfda-mcp/internal/usecase/classification"
	healthuc "github.com/kailas-cloud/openfda-mcp/internal/usecase/health"
	"github.com/kailas-cloud/openfda-mcp/internal/version"
)

// ToolName is the name of the MCP tool whose behavior CallTool reproduces.
const ToolName = mcptransport.ToolName

const (
	defaultBaseURL = "https://api.fda.gov"
	defaultTimeout = 30 * time.Second
	serverName     = "OpenFDA Device Classifications"
)

var errDegraded = errors.New("openfda: upstream degraded")

// Internal interfaces for substitution in tests.
type fetcher interface {
	Fetch(ctx context.Context, req *request.Request) (domclass.Response, error)
}

type reportUseCase interface {
	Run(ctx context.Context, req *request.Request) (string, error)
}

type toolInvoker interface {
	Invoke(ctx context.Context, name string, args map[string]any) ([]mcpgo.Content, error)
}

// Client is the openFDA SDK entry point. Safe for concurrent use.
type Client struct {
	bounds    request.Bounds
	fetcher   fetcher
	reportSvc reportUseCase
	tools     toolInvoker
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client. No request is sent until the first call.
func New(opts ...Option) (*Client, error) {
	policy := retry.DefaultPolicy()
	bounds := request.DefaultBounds()
	cfg := &clientConfig{
		baseURL:      defaultBaseURL,
		timeout:      defaultTimeout,
		attempts:     policy.MaxAttempts,
		delay:        policy.Delay,
		userAgent:    "openfda-mcp-sdk/" + version.Version,
		minLimit:     bounds.MinLimit,
		maxLimit:     bounds.MaxLimit,
		defaultLimit: bounds.DefaultLimit,
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, fmt.Errorf("openfda: init observer: %w", err)
	}

	bounds.MinLimit = cfg.minLimit
	bounds.MaxLimit = cfg.maxLimit
	bounds.DefaultLimit = cfg.defaultLimit

	upstream := fdatransport.NewClient(&fdatransport.Config{
		BaseURL:   cfg.baseURL,
		Timeout:   cfg.timeout,
		Policy:    retry.Policy{MaxAttempts: cfg.attempts, Delay: cfg.delay},
		UserAgent: cfg.userAgent,
		Logger:    zap.NewNop(),
	})
	svc := classificationuc.New(upstream, bounds)
	tools := mcptransport.NewServer(serverName, version.String(), svc, bounds, zap.NewNop())

	return &Client{
		bounds:    bounds,
		fetcher:   upstream,
		reportSvc: svc,
		tools:     tools,
		healthSvc: healthuc.New(upstream).WithTimeout(cfg.timeout),
		obs:       obs,
	}, nil
}

func (c *clientConfig) validate() error {
	switch {
	case strings.TrimSpace(c.baseURL) == "":
		return errors.New("openfda: base URL is required")
	case c.timeout <= 0:
		return fmt.Errorf("openfda: timeout must be positive, got %s", c.timeout)
	case c.attempts < 1:
		return fmt.Errorf("openfda: retry attempts must be at least 1, got %d", c.attempts)
	case c.delaySet && c.delay < 0:
		return fmt.Errorf("openfda: retry delay must not be negative, got %s", c.delay)
	case c.minLimit < 1 || c.maxLimit < c.minLimit:
		return fmt.Errorf("openfda: invalid limits [%d, %d]", c.minLimit, c.maxLimit)
	case c.defaultLimit < c.minLimit || c.defaultLimit > c.maxLimit:
		return fmt.Errorf("openfda: default limit %d outside [%d, %d]", c.defaultLimit, c.minLimit, c.maxLimit)
	}
	return nil
}

// Search runs a classification search and returns the typed records.
// The query is trimmed and limit is clamped into the configured bounds;
// a limit of 0 selects the default.
func (c *Client) Search(ctx context.Context, query string, limit int) (*Result, error) {
	start := time.Now()
	req, err := c.newRequest(query, limit)
	if err == nil {
		var resp domclass.Response
		resp, err = c.fetcher.Fetch(ctx, &req)
		if err == nil {
			c.obs.observe(opSearch, start, nil)
			return resultFromDomain(&resp), nil
		}
	}
	c.obs.observe(opSearch, start, err)
	return nil, err
}

// Report runs a classification search and returns the Markdown report.
// Errors are returned as errors, not rendered as text.
func (c *Client) Report(ctx context.Context, query string, limit int) (string, error) {
	start := time.Now()
	req, err := c.newRequest(query, limit)
	if err != nil {
		c.obs.observe(opReport, start, err)
		return "", err
	}
	text, err := c.reportSvc.Run(ctx, &req)
	c.obs.observe(opReport, start, err)
	return text, err
}

// CallTool invokes a tool by name with raw MCP arguments and returns the text
// an MCP client would receive. Search failures come back as text; only an
// unknown tool name is an error (ErrUnknownTool).
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	start := time.Now()
	content, err := c.tools.Invoke(ctx, name, args)
	if err != nil {
		c.obs.observe(opCallTool, start, err)
		return "", err
	}
	c.obs.observe(opCallTool, start, nil)
	return joinText(content), nil
}

// Close releases client resources. The client holds no connections between
// calls, so Close is a no-op kept for API stability.
func (c *Client) Close() error {
	return nil
}

func (c *Client) newRequest(query string, limit int) (request.Request, error) {
	if limit == 0 {
		limit = c.bounds.DefaultLimit
	}
	return request.New(query, limit, c.bounds)
}

func joinText(content []mcpgo.Content) string {
	parts := make([]string, 0, len(content))
	for _, item := range content {
		if tc, ok := item.(mcpgo.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}
