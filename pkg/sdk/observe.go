package openfda

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/openfda-mcp/internal/domain"
)

// SDK operations, used as the "operation" label.
const (
	opSearch   = "search"
	opReport   = "report"
	opCallTool = "call_tool"
	opHealth   = "health"
)

// Outcome classes, used as the "status" label.
const (
	statusOK                = "ok"
	statusInvalidArgument   = "invalid_argument"
	statusTimeout           = "timeout"
	statusUpstreamHTTP      = "upstream_http"
	statusNetwork           = "network"
	statusMalformedResponse = "malformed_response"
	statusUnknownTool       = "unknown_tool"
	statusDegraded          = "degraded"
	statusCanceled          = "canceled"
	statusError             = "error"
)

// errorClasses maps domain sentinels to status labels, checked in order.
var errorClasses = []struct {
	target error
	status string
}{
	{domain.ErrInvalidArgument, statusInvalidArgument},
	{domain.ErrTimeout, statusTimeout},
	{domain.ErrUpstreamHTTP, statusUpstreamHTTP},
	{domain.ErrNetwork, statusNetwork},
	{domain.ErrMalformedResponse, statusMalformedResponse},
	{domain.ErrUnknownTool, statusUnknownTool},
	{errDegraded, statusDegraded},
	{context.Canceled, statusCanceled},
}

// classify returns the status label for an operation result.
func classify(err error) string {
	if err == nil {
		return statusOK
	}
	for _, c := range errorClasses {
		if errors.Is(err, c.target) {
			return c.status
		}
	}
	return statusError
}

// sdkMetrics holds prometheus metrics registered for the SDK.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "openfda_mcp",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Total SDK operations by type and outcome class.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "openfda_mcp",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds, upstream retries included.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 100},
		}, []string{"operation"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one,
// so several clients can share one registry.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("openfda: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("openfda: register metric: %w", err)
	}
	return nil
}

// observer records every SDK operation in metrics and the log.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

// observe records op and returns its status label.
func (o *observer) observe(op string, start time.Time, err error) string {
	status := classify(err)
	if o == nil {
		return status
	}
	dur := time.Since(start)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}

	if o.logger == nil {
		return status
	}
	switch status {
	case statusOK:
		o.logger.Debug("openFDA operation completed", "op", op, "duration", dur)
	case statusInvalidArgument, statusCanceled:
		// Caller mistakes and cancellations say nothing about openFDA.
		o.logger.Debug("openFDA operation rejected",
			"op", op, "status", status, "duration", dur, "error", err)
	default:
		o.logger.Warn("openFDA operation failed",
			"op", op, "status", status, "duration", dur, "error", err)
	}
	return status
}
