// Package monitor runs the continuous health evaluation loop behind
// monitor mode: build a report on every tick, publish gauges, and keep
// the most recent report for the HTTP surface.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/wowsimlabs/simops/internal/metrics"
	"github.com/wowsimlabs/simops/internal/models"
	"github.com/wowsimlabs/simops/internal/utils"
)

// DefaultInterval is the evaluation cadence when none is configured.
const DefaultInterval = 2 * time.Second

// ReportBuilder produces one health report per call.
type ReportBuilder interface {
	Build(ctx context.Context) (models.HealthReport, error)
}

// Monitor owns the periodic evaluation loop. A failed build keeps the
// previous report in place; consumers always see the last good one.
type Monitor struct {
	logger    *slog.Logger
	builder   ReportBuilder
	interval  time.Duration
	latencies *utils.LatencyTracker
	builds    int

	mu     sync.RWMutex
	latest models.HealthReport
	ready  bool
}

// New wires a monitor around the given builder.
func New(logger *slog.Logger, builder ReportBuilder, interval time.Duration) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		logger:    logger,
		builder:   builder,
		interval:  interval,
		latencies: utils.NewLatencyTracker(512),
	}
}

// Run evaluates health on every tick until the context is cancelled.
// The first build happens immediately, not one interval in.
func (m *Monitor) Run(ctx context.Context) {
	m.logger.Info("monitor started", slog.Duration("interval", m.interval))
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.buildOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("monitor stopped")
			return
		case <-ticker.C:
			m.buildOnce(ctx)
		}
	}
}

func (m *Monitor) buildOnce(ctx context.Context) {
	start := time.Now()
	rep, err := m.builder.Build(ctx)
	duration := time.Since(start)
	metrics.ObserveReportBuild(duration, err)
	if err != nil {
		m.logger.Error("health report build failed", slog.Any("error", err))
		return
	}

	m.latencies.Observe(duration)
	metrics.SetHealthStatus(rep.Status)

	m.mu.Lock()
	m.latest = rep
	m.ready = true
	m.mu.Unlock()

	m.logger.Info("health evaluated",
		slog.String("status", string(rep.Status)),
		slog.Int("anomalies", len(rep.Anomalies)),
		slog.Int("players", rep.ConnectedPlayers))

	m.builds++
	if m.builds%20 == 0 {
		m.logger.Info("report build latency",
			slog.Duration("p95", m.latencies.Percentile(95)),
			slog.Int("samples", m.latencies.Count()))
	}
}

// Latest returns the most recent report, or false before the first
// successful build.
func (m *Monitor) Latest() (models.HealthReport, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest, m.ready
}

// LatencyP95 returns the current p95 report build latency.
func (m *Monitor) LatencyP95() time.Duration {
	return m.latencies.Percentile(95)
}
