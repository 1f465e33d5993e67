package classification

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/openfda-mcp/internal/domain/search/request"
)

// Service runs the classification search pipeline: normalize, fetch, render.
type Service struct {
	fetcher Fetcher
	bounds  request.Bounds
}

// New creates a classification search service.
func New(fetcher Fetcher, bounds request.Bounds) *Service {
	return &Service{fetcher: fetcher, bounds: bounds}
}

// Bounds returns the argument limits the service validates against.
func (s *Service) Bounds() request.Bounds { return s.bounds }

// Search validates raw tool arguments and returns the rendered report.
// Invalid arguments fail before any upstream call.
func (s *Service) Search(ctx context.Context, args map[string]any) (string, error) {
	req, err := request.Parse(args, s.bounds)
	if err != nil {
		return "", fmt.Errorf("parse arguments: %w", err)
	}
	return s.Run(ctx, &req)
}

// Run fetches an already validated request and renders the report.
func (s *Service) Run(ctx context.Context, req *request.Request) (string, error) {
	resp, err := s.fetcher.Fetch(ctx, req)
	if err != nil {
		return "", fmt.Errorf("fetch classifications: %w", err)
	}
	return Render(req, &resp), nil
}
