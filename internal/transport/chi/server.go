package chi

import (
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/openfda-mcp/internal/metrics"
	healthuc "github.com/kailas-cloud/openfda-mcp/internal/usecase/health"
)

// Route paths served in HTTP mode.
const (
	MCPPath     = "/mcp"
	MetricsPath = "/metrics"
	HealthPath  = "/healthz"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// healthResponse is the /healthz body.
type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Server holds the non-MCP HTTP handlers.
type Server struct {
	health *healthuc.Service
	logger *zap.Logger
}

// NewServer creates the HTTP handlers.
func NewServer(health *healthuc.Service, logger *zap.Logger) *Server {
	return &Server{health: health, logger: logger}
}

// NewRouter mounts the streamable MCP endpoint, metrics and health checks.
func NewRouter(mcpHandler http.Handler, s *Server) http.Handler {
	r := gochi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())

	r.Handle(MCPPath, mcpHandler)
	r.Get(HealthPath, s.HealthCheck)
	r.Get(MetricsPath, s.Metrics)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"code": "not_found", "message": "not found"})
	})
	return r
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
