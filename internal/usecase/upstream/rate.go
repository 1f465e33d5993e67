package upstream

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/openfda-mcp/internal/metrics"
)

// window is the span the rate limit is expressed over.
const window = time.Minute

// RateWatcher tracks upstream requests over a sliding one-minute window.
// It is advisory: exceeding the limit is logged and exported, never rejected.
type RateWatcher struct {
	mu       sync.Mutex
	stamps   []time.Time
	limit    int
	exceeded bool
	now      func() time.Time
	logger   *zap.Logger
}

// NewRateWatcher creates a watcher for the given requests-per-minute limit.
// A limit of 0 disables the warning but still counts requests.
func NewRateWatcher(limit int, logger *zap.Logger) *RateWatcher {
	return &RateWatcher{
		limit:  limit,
		now:    time.Now,
		logger: logger,
	}
}

// Observe records one request and returns the number seen in the trailing minute.
func (w *RateWatcher) Observe() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.prune(now)
	w.stamps = append(w.stamps, now)
	n := len(w.stamps)

	metrics.UpstreamRequestsLastMinute.Set(float64(n))

	over := w.limit > 0 && n > w.limit
	if over && !w.exceeded {
		// warn once per crossing, not on every request above the line
		w.logger.Warn("openFDA rate limit exceeded",
			zap.Int("requests_last_minute", n),
			zap.Int("limit_per_minute", w.limit),
		)
	}
	if !over && w.exceeded {
		w.logger.Info("openFDA request rate back under limit",
			zap.Int("requests_last_minute", n),
			zap.Int("limit_per_minute", w.limit),
		)
	}
	w.exceeded = over
	return n
}

// Count returns the number of requests in the trailing minute.
func (w *RateWatcher) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune(w.now())
	return len(w.stamps)
}

// Limit returns the advisory requests-per-minute limit.
func (w *RateWatcher) Limit() int { return w.limit }

// Exceeded reports whether the last observation was above the limit.
func (w *RateWatcher) Exceeded() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.exceeded
}

// prune drops stamps older than the window. Stamps are appended in order.
func (w *RateWatcher) prune(now time.Time) {
	cutoff := now.Add(-window)
	i := 0
	for i < len(w.stamps) && !w.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.stamps = append(w.stamps[:0], w.stamps[i:]...)
	}
}
