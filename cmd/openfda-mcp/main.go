package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/openfda-mcp/internal/config"
	logpkg "github.com/kailas-cloud/openfda-mcp/internal/logger"
	"github.com/kailas-cloud/openfda-mcp/internal/metrics"
	chiTransport "github.com/kailas-cloud/openfda-mcp/internal/transport/chi"
	mcpTransport "github.com/kailas-cloud/openfda-mcp/internal/transport/mcp"
	"github.com/kailas-cloud/openfda-mcp/internal/transport/openfda"
	classificationuc "github.com/kailas-cloud/openfda-mcp/internal/usecase/classification"
	healthuc "github.com/kailas-cloud/openfda-mcp/internal/usecase/health"
	upstreamuc "github.com/kailas-cloud/openfda-mcp/internal/usecase/upstream"
	"github.com/kailas-cloud/openfda-mcp/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		// stdout belongs to the MCP client in stdio mode
		fmt.Fprintln(os.Stderr, "failed to load config: "+err.Error())
		os.Exit(1)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger: "+err.Error())
		os.Exit(1)
	}

	logger.Info("Starting OpenFDA MCP Server",
		zap.String("version", version.String()),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("transport", cfg.Server.Transport),
		zap.String("base_url", cfg.Upstream.BaseURL),
		zap.Int("timeout_sec", cfg.Upstream.TimeoutSec),
		zap.Int("max_retries", cfg.Upstream.MaxRetries),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, &cfg, logger); err != nil {
		logger.Error("Server error", zap.Error(err))
		_ = logger.Sync()
		stop()
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
	_ = logger.Sync()
}

// run wires the pipeline and serves until ctx is cancelled or the transport fails.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	// Register metrics explicitly (no init())
	metrics.RegisterUpstreamMetrics()

	// Composition root: openFDA client -> Instrumented -> classification service -> MCP server
	client := openfda.NewClient(&openfda.Config{
		BaseURL:   cfg.Upstream.BaseURL,
		Timeout:   cfg.Timeout(),
		Policy:    cfg.RetryPolicy(),
		UserAgent: cfg.Upstream.UserAgent,
		Logger:    logger,
	})
	rate := upstreamuc.NewRateWatcher(cfg.Upstream.RateLimitPerMinute, logger)
	fetcher := upstreamuc.NewInstrumentedFetcher(client, rate, logger)

	searchSvc := classificationuc.New(fetcher, cfg.Bounds())
	mcpSrv := mcpTransport.NewServer(cfg.Server.Name, version.String(), searchSvc, cfg.Bounds(), logger)

	switch cfg.Server.Transport {
	case config.TransportHTTP:
		healthSvc := healthuc.New(client)
		return serveHTTP(ctx, cfg, mcpSrv, healthSvc, logger)
	default:
		logger.Info("Serving MCP over stdio")
		err := mcpSrv.ServeStdio(ctx, os.Stdin, os.Stdout)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("stdio server: %w", err)
		}
		return nil
	}
}

func serveHTTP(
	ctx context.Context, cfg *config.Config,
	mcpSrv *mcpTransport.Server, healthSvc *healthuc.Service, logger *zap.Logger,
) error {
	metrics.RegisterHTTPMetrics()

	router := chiTransport.NewRouter(mcpSrv.HTTPHandler(), chiTransport.NewServer(healthSvc, logger))

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr), zap.String("mcp_path", chiTransport.MCPPath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
