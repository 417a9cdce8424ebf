// Package http exposes the resolution service, health checks and metrics over HTTP.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"foxypack/internal/core"
	"foxypack/pkg/foxypack"
)

const shutdownTimeout = 10 * time.Second

// Resolver is the part of core.Service the HTTP layer needs.
type Resolver interface {
	Analyze(url string) (*foxypack.Analysis, error)
	Statistics(ctx context.Context, url, mode string) (foxypack.Statistics, error)
}

type Server struct {
	config  *core.ServerConfig
	logger  *zap.Logger
	server  *http.Server
	metrics *Metrics
}

func NewServer(config *core.ServerConfig, resolver Resolver, metrics *Metrics, gatherer prometheus.Gatherer,
	logger *zap.Logger) *Server {
	mux := setupRoutes(logger, resolver, metrics, gatherer)

	return &Server{
		config:  config,
		logger:  logger,
		server:  createHTTPServer(config, mux),
		metrics: metrics,
	}
}

func createHTTPServer(config *core.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
}

func setupRoutes(logger *zap.Logger, resolver Resolver, metrics *Metrics, gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", statusHandler(`{"status":"ok","service":"foxypack"}`, logger))
	mux.HandleFunc("/readyz", statusHandler(`{"status":"ready","service":"foxypack"}`, logger))
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /v1/analysis", analysisHandler(resolver, metrics, logger))
	mux.HandleFunc("GET /v1/statistics", statisticsHandler(resolver, metrics, logger))
	mux.HandleFunc("GET /{$}", homeHandler(logger))

	return mux
}

func statusHandler(body string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(body)); err != nil {
			logger.Debug("Failed to write status response", zap.Error(err))
		}
	}
}

func homeHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>foxypack</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        .endpoint { margin: 10px 0; }
        .endpoint a { text-decoration: none; color: #0066cc; }
    </style>
</head>
<body>
    <h1>foxypack</h1>
    <p>Social media URL classification and statistics.</p>

    <h2>Endpoints</h2>
    <div class="endpoint"><code>GET /v1/analysis?url=...</code> - classify a URL</div>
    <div class="endpoint"><code>GET /v1/statistics?url=...&amp;mode=sync|async</code> - collect statistics</div>
    <div class="endpoint"><a href="/metrics">Metrics</a> - Prometheus metrics</div>
    <div class="endpoint"><a href="/healthz">Health</a> - Health check</div>
    <div class="endpoint"><a href="/readyz">Ready</a> - Readiness check</div>
</body>
</html>`)); err != nil {
			logger.Debug("Failed to write home page", zap.Error(err))
		}
	}
}

func analysisHandler(resolver Resolver, metrics *Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url := r.URL.Query().Get("url")
		if url == "" {
			writeError(w, logger, http.StatusBadRequest, "missing url parameter")
			return
		}

		start := time.Now()
		analysis, err := resolver.Analyze(url)
		metrics.RecordDuration(foxypack.RoleAnalysis, time.Since(start))

		switch {
		case err != nil:
			metrics.RecordError(foxypack.RoleAnalysis, err)
			logger.Error("Analysis failed", zap.String("url", url), zap.Error(err))
			writeError(w, logger, statusForError(err), err.Error())
		case analysis == nil:
			writeError(w, logger, http.StatusNotFound, "no handler recognized the URL")
		default:
			writeJSON(w, logger, http.StatusOK, analysis)
		}
	}
}

func statisticsHandler(resolver Resolver, metrics *Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		url := query.Get("url")
		if url == "" {
			writeError(w, logger, http.StatusBadRequest, "missing url parameter")
			return
		}
		mode := query.Get("mode")

		start := time.Now()
		stats, err := resolver.Statistics(r.Context(), url, mode)
		metrics.RecordDuration(foxypack.RoleStatistics, time.Since(start))

		switch {
		case err != nil:
			metrics.RecordError(foxypack.RoleStatistics, err)
			logger.Error("Statistics failed",
				zap.String("url", url),
				zap.String("mode", mode),
				zap.Error(err))
			writeError(w, logger, statusForError(err), err.Error())
		case stats == nil:
			writeError(w, logger, http.StatusNotFound, "no handler produced statistics for the URL")
		default:
			writeJSON(w, logger, http.StatusOK, core.NewStatisticsView(stats))
		}
	}
}

// statusForError maps caller mistakes to 400 and everything else to 500.
func statusForError(err error) int {
	if errors.Is(err, foxypack.ErrUnsupportedOperation) || errors.Is(err, foxypack.ErrUsage) {
		return http.StatusBadRequest
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func asSystemError(err error) (*foxypack.Error, bool) {
	var sysErr *foxypack.Error
	ok := errors.As(err, &sysErr)
	return sysErr, ok
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("Failed to write JSON response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, logger *zap.Logger, status int, message string) {
	writeJSON(w, logger, status, map[string]string{"error": message})
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

func (s *Server) GetMetrics() *Metrics {
	return s.metrics
}
