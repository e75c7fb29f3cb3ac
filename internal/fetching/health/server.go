package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes health probes and Prometheus metrics over HTTP.
type Server struct {
	monitor *Monitor
	logger  *slog.Logger
	srv     *http.Server
}

// NewServer creates the HTTP surface on the given port.
func NewServer(port int, monitor *Monitor, logger *slog.Logger) *Server {
	s := &Server{
		monitor: monitor,
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/detailed", s.handleHealthDetailed)
	mux.Handle("/metrics", promhttp.Handler())

	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Start runs the server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info("health server listening", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("health server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeSummary(w, s.monitor.Summary(false))
}

func (s *Server) handleHealthDetailed(w http.ResponseWriter, r *http.Request) {
	s.writeSummary(w, s.monitor.Summary(true))
}

func (s *Server) writeSummary(w http.ResponseWriter, summary Summary) {
	w.Header().Set("Content-Type", "application/json")
	if summary.Status == StatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		s.logger.Error("failed to encode health response", "error", err)
	}
}
