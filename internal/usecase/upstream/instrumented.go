package upstream

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	domclass "github.com/kailas-cloud/openfda-mcp/internal/domain/classification"
	"github.com/kailas-cloud/openfda-mcp/internal/domain/search/request"
	"github.com/kailas-cloud/openfda-mcp/internal/logger"
)

// Fetcher is the upstream search contract being decorated.
type Fetcher interface {
	Fetch(ctx context.Context, req *request.Request) (domclass.Response, error)
}

// RateObserver is the local interface for advisory rate tracking.
type RateObserver interface {
	Observe() int
	Limit() int
}

// InstrumentedFetcher wraps a Fetcher with rate tracking and logging.
// Transport metrics (attempts, duration, errors) are recorded in transport/openfda.
type InstrumentedFetcher struct {
	inner  Fetcher
	rate   RateObserver
	logger *zap.Logger
}

// NewInstrumentedFetcher wraps a fetcher. rate can be nil.
func NewInstrumentedFetcher(inner Fetcher, rate RateObserver, logger *zap.Logger) *InstrumentedFetcher {
	return &InstrumentedFetcher{inner: inner, rate: rate, logger: logger}
}

// Fetch records the request against the rate window, then delegates.
func (f *InstrumentedFetcher) Fetch(ctx context.Context, req *request.Request) (domclass.Response, error) {
	log := logger.FromContextOr(ctx, f.logger)

	inWindow := 0
	if f.rate != nil {
		inWindow = f.rate.Observe()
	}

	start := time.Now()
	resp, err := f.inner.Fetch(ctx, req)
	duration := time.Since(start)

	if err != nil {
		log.Warn("openFDA search failed",
			zap.String("query", req.Query()),
			zap.Int("limit", req.Limit()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domclass.Response{}, fmt.Errorf("openfda search: %w", err)
	}

	log.Debug("openFDA search completed",
		zap.String("query", req.Query()),
		zap.Int("limit", req.Limit()),
		zap.Int("returned", len(resp.Records())),
		zap.Int("total", resp.Total()),
		zap.Int("requests_last_minute", inWindow),
		zap.Duration("duration", duration),
	)
	return resp, nil
}
