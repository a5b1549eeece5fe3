package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wowsimlabs/simops/internal/metrics"
	"github.com/wowsimlabs/simops/internal/models"
)

// ReportSource serves the most recent health report. Satisfied by the
// monitor.
type ReportSource interface {
	Latest() (models.HealthReport, bool)
}

// Server exposes the monitor's latest report and Prometheus metrics
// over HTTP.
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	listener   net.Listener
}

// NewServer binds the listener and registers handlers. Metric
// collectors are attached to the default registry.
func NewServer(logger *slog.Logger, addr string, source ReportSource) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		lis.Close()
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	h := &handlers{logger: logger, source: source}
	return &Server{
		logger: logger,
		httpServer: &http.Server{
			Handler:      h.routes(),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		listener: lis,
	}, nil
}

// Start serves incoming requests until Shutdown is invoked.
func (s *Server) Start() error {
	if s.httpServer == nil || s.listener == nil {
		return fmt.Errorf("server not initialised")
	}
	if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, closing hard once the context
// expires.
func (s *Server) Shutdown(ctx context.Context) {
	if s.httpServer == nil {
		return
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("forcing server close", slog.Any("error", err))
		s.httpServer.Close()
	}
}

// Address exposes the bound listener address (useful for tests).
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
