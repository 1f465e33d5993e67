package openfda

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	baseURL   string
	timeout   time.Duration
	attempts  int
	delay     time.Duration
	delaySet  bool
	userAgent string

	minLimit     int
	maxLimit     int
	defaultLimit int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithBaseURL overrides the openFDA API base URL.
// Default: https://api.fda.gov.
func WithBaseURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = url
	})
}

// WithTimeout sets the per-attempt request timeout.
// Default: 30s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithRetry sets the total number of attempts and the pause between them.
// Only timeouts are retried. Default: 3 attempts, 1s apart.
func WithRetry(maxAttempts int, delay time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.attempts = maxAttempts
		c.delay = delay
		c.delaySet = true
	})
}

// WithUserAgent sets the User-Agent header sent to openFDA.
func WithUserAgent(ua string) Option {
	return optionFunc(func(c *clientConfig) {
		c.userAgent = ua
	})
}

// WithLimits sets the result-count bounds. Requested limits are clamped into
// [minLimit, maxLimit]; defaultLimit is used when none is given.
// Default: 1, 1000, 10.
func WithLimits(minLimit, maxLimit, defaultLimit int) Option {
	return optionFunc(func(c *clientConfig) {
		c.minLimit = minLimit
		c.maxLimit = maxLimit
		c.defaultLimit = defaultLimit
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
