// Package report assembles health snapshots. The Builder is the single
// place I/O meets the pure analysis layers: it gathers one telemetry
// window, one reachability answer, and one fault listing, then reduces
// them through the detector, the aggregates, and the evaluator.
package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wowsimlabs/simops/internal/detect"
	"github.com/wowsimlabs/simops/internal/gamemetrics"
	"github.com/wowsimlabs/simops/internal/health"
	"github.com/wowsimlabs/simops/internal/models"
	"github.com/wowsimlabs/simops/internal/utils"
)

// TelemetrySource supplies the recent telemetry window.
type TelemetrySource interface {
	ReadRecent(ctx context.Context) ([]models.TelemetryEntry, error)
}

// Prober answers whether a TCP endpoint accepts connections.
type Prober interface {
	Check(ctx context.Context, host string, port int) bool
}

// FaultLister reports the injector's fault table.
type FaultLister interface {
	List(ctx context.Context) ([]models.FaultInfo, error)
}

// Config addresses the game server for the reachability probe.
type Config struct {
	GameHost string
	GamePort int
}

// Builder builds immutable health reports on demand. Safe for concurrent
// use as long as its collaborators are.
type Builder struct {
	logger   *slog.Logger
	source   TelemetrySource
	prober   Prober
	faults   FaultLister
	detector *detect.Detector
	cfg      Config
}

// NewBuilder wires the builder's collaborators. The prober and fault
// lister may be nil: without a prober the server reads as unreachable,
// without a lister the report simply carries no fault context.
func NewBuilder(logger *slog.Logger, source TelemetrySource, prober Prober, faults FaultLister, detector *detect.Detector, cfg Config) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	if detector == nil {
		detector = detect.New(detect.Config{})
	}
	return &Builder{
		logger:   logger,
		source:   source,
		prober:   prober,
		faults:   faults,
		detector: detector,
		cfg:      cfg,
	}
}

// Build produces one fresh report. The three I/O legs run concurrently;
// a failed telemetry read fails the whole build since there is nothing
// to grade without a window, while a failed fault listing only degrades
// the report to an empty fault list.
func (b *Builder) Build(ctx context.Context) (models.HealthReport, error) {
	if b.source == nil {
		return models.HealthReport{}, utils.NewAppError("report.Build", "telemetry source not configured", nil)
	}

	var (
		entries   []models.TelemetryEntry
		reachable bool
		faults    []models.FaultInfo
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entries, err = b.source.ReadRecent(gctx)
		return err
	})
	g.Go(func() error {
		if b.prober == nil {
			return nil
		}
		reachable = b.prober.Check(gctx, b.cfg.GameHost, b.cfg.GamePort)
		return nil
	})
	g.Go(func() error {
		if b.faults == nil {
			return nil
		}
		list, err := b.faults.List(gctx)
		if err != nil {
			b.logger.Warn("fault listing failed, continuing without fault context", slog.Any("error", err))
			return nil
		}
		faults = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.HealthReport{}, utils.NewAppError("report.Build", "read telemetry window", err)
	}

	rep := b.reduce(entries, reachable, faults)
	b.logger.Debug("health report built",
		slog.String("report_id", rep.ID),
		slog.String("status", string(rep.Status)),
		slog.Bool("reachable", rep.ServerReachable),
		slog.Int("entries", len(entries)),
		slog.Int("anomalies", len(rep.Anomalies)))
	return rep, nil
}

func (b *Builder) reduce(entries []models.TelemetryEntry, reachable bool, faults []models.FaultInfo) models.HealthReport {
	anomalies := b.detector.Detect(entries)
	tick := health.ComputeTickHealth(entries)
	zones := health.SummarizeZones(entries)
	game := gamemetrics.Aggregate(entries)
	players := health.CountConnectedPlayers(entries)

	active := make([]models.FaultInfo, 0, len(faults))
	for _, f := range faults {
		if f.Active {
			active = append(active, f)
		}
	}

	status, reason := health.EvaluateReason(health.EvalInput{
		Tick:             tick,
		Zones:            zones,
		Anomalies:        anomalies,
		Game:             game,
		ConnectedPlayers: players,
	})
	if status != models.StatusHealthy {
		b.logger.Debug("evaluation", slog.String("status", string(status)), slog.String("rule", reason))
	}

	return models.HealthReport{
		ID:               uuid.NewString(),
		Timestamp:        time.Now().UTC(),
		Status:           status,
		ServerReachable:  reachable,
		Tick:             tick,
		Zones:            zones,
		ConnectedPlayers: players,
		Anomalies:        anomalies,
		ActiveFaults:     active,
		ErrorCount:       health.CountErrors(entries),
		UptimeTicks:      health.UptimeTicks(entries),
		Game:             game,
	}
}
