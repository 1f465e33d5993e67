package classification

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/openfda-mcp/internal/domain"
	domclass "github.com/kailas-cloud/openfda-mcp/internal/domain/classification"
	"github.com/kailas-cloud/openfda-mcp/internal/domain/search/request"
)

// --- Mocks ---

type mockFetcher struct {
	resp    domclass.Response
	err     error
	calls   int
	lastReq request.Request
}

func (m *mockFetcher) Fetch(_ context.Context, req *request.Request) (domclass.Response, error) {
	m.calls++
	m.lastReq = *req
	return m.resp, m.err
}

// --- Tests ---

func TestSearch_Success(t *testing.T) {
	f := &mockFetcher{resp: domclass.NewResponse([]domclass.Record{pacemaker()}, intp(3))}
	svc := New(f, request.DefaultBounds())

	out, err := svc.Search(context.Background(), map[string]any{"search": " pacemaker ", "limit": "5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.calls != 1 {
		t.Fatalf("expected 1 fetch, got %d", f.calls)
	}
	if f.lastReq.Query() != "pacemaker" || f.lastReq.Limit() != 5 {
		t.Errorf("unexpected request: query=%q limit=%d", f.lastReq.Query(), f.lastReq.Limit())
	}
	if !strings.Contains(out, "**Search Query:** pacemaker\n") {
		t.Errorf("unexpected report:\n%s", out)
	}
}

func TestSearch_ClampsLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit any
		want  int
	}{
		{"absent", nil, 10},
		{"too big", float64(5000), 1000},
		{"zero", float64(0), 1},
		{"negative text", "-3", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &mockFetcher{resp: domclass.NewResponse(nil, nil)}
			svc := New(f, request.DefaultBounds())

			args := map[string]any{}
			if tt.limit != nil {
				args["limit"] = tt.limit
			}
			if _, err := svc.Search(context.Background(), args); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.lastReq.Limit() != tt.want {
				t.Errorf("limit = %d, want %d", f.lastReq.Limit(), tt.want)
			}
		})
	}
}

func TestSearch_InvalidArgumentsSkipFetch(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{"bad limit", map[string]any{"limit": "abc"}},
		{"long query", map[string]any{"search": strings.Repeat("a", 501)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &mockFetcher{}
			svc := New(f, request.DefaultBounds())

			_, err := svc.Search(context.Background(), tt.args)
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
			if f.calls != 0 {
				t.Errorf("fetcher must not be called, got %d calls", f.calls)
			}
		})
	}
}

func TestSearch_FetchErrorWrapped(t *testing.T) {
	f := &mockFetcher{err: domain.NewUpstreamHTTPError(429)}
	svc := New(f, request.DefaultBounds())

	_, err := svc.Search(context.Background(), nil)
	if !errors.Is(err, domain.ErrUpstreamHTTP) {
		t.Fatalf("expected ErrUpstreamHTTP, got %v", err)
	}
	var httpErr *domain.UpstreamHTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 429 {
		t.Errorf("expected status 429, got %v", err)
	}
}

func TestRun_UsesTypedRequest(t *testing.T) {
	f := &mockFetcher{resp: domclass.NewResponse(nil, intp(0))}
	svc := New(f, request.DefaultBounds())

	out, err := svc.Run(context.Background(), mustReq(t, "", 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(out, "No classifications found matching your search criteria.") {
		t.Errorf("unexpected report:\n%s", out)
	}
}
