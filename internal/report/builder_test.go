package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wowsimlabs/simops/internal/models"
)

type fakeSource struct {
	entries []models.TelemetryEntry
	err     error
}

func (f *fakeSource) ReadRecent(ctx context.Context) ([]models.TelemetryEntry, error) {
	return f.entries, f.err
}

type fakeProber bool

func (f fakeProber) Check(ctx context.Context, host string, port int) bool {
	return bool(f)
}

type fakeLister struct {
	faults []models.FaultInfo
	err    error
}

func (f *fakeLister) List(ctx context.Context) ([]models.FaultInfo, error) {
	return f.faults, f.err
}

var repBase = time.Date(2026, 2, 23, 12, 0, 0, 0, time.UTC)

func repEntry(offsetSec float64, typ models.EntryType, component, message string, data map[string]any) models.TelemetryEntry {
	return models.TelemetryEntry{
		SchemaVersion: 1,
		Timestamp:     repBase.Add(time.Duration(offsetSec * float64(time.Second))),
		Type:          typ,
		Component:     component,
		Message:       message,
		Data:          data,
	}
}

func healthyWindow() []models.TelemetryEntry {
	return []models.TelemetryEntry{
		repEntry(0, models.EntryTypeMetric, models.ComponentGameLoop, models.MsgTickCompleted,
			map[string]any{"tick": float64(500), "duration_ms": 40.0, "overrun": false}),
		repEntry(1, models.EntryTypeMetric, models.ComponentGameLoop, models.MsgTickCompleted,
			map[string]any{"tick": float64(520), "duration_ms": 45.0, "overrun": false}),
		repEntry(2, models.EntryTypeEvent, models.ComponentGameServer, models.MsgConnectionAccepted,
			map[string]any{"session_id": float64(1)}),
	}
}

func TestBuildHealthyReport(t *testing.T) {
	b := NewBuilder(nil, &fakeSource{entries: healthyWindow()}, fakeProber(true), &fakeLister{}, nil, Config{GameHost: "localhost", GamePort: 8080})

	rep, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if rep.Status != models.StatusHealthy {
		t.Errorf("expected healthy, got %s", rep.Status)
	}
	if !rep.ServerReachable {
		t.Error("expected reachable")
	}
	if rep.ID == "" {
		t.Error("expected a report id")
	}
	if rep.Tick == nil || rep.Tick.TotalTicks != 2 {
		t.Errorf("unexpected tick stats: %+v", rep.Tick)
	}
	if rep.ConnectedPlayers != 1 {
		t.Errorf("expected 1 connected player, got %d", rep.ConnectedPlayers)
	}
	if rep.UptimeTicks != 520 {
		t.Errorf("expected uptime 520, got %d", rep.UptimeTicks)
	}
	if len(rep.Anomalies) != 0 {
		t.Errorf("expected no anomalies, got %d", len(rep.Anomalies))
	}
	if rep.Anomalies == nil {
		t.Error("anomalies must be an empty slice, not nil")
	}
}

func TestBuildCriticalOnZoneCrash(t *testing.T) {
	window := append(healthyWindow(),
		repEntry(3, models.EntryTypeError, models.ComponentZone, models.MsgZoneTickException,
			map[string]any{"zone_id": float64(2), "error": "entity index out of range"}))
	b := NewBuilder(nil, &fakeSource{entries: window}, fakeProber(true), nil, nil, Config{})

	rep, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if rep.Status != models.StatusCritical {
		t.Fatalf("expected critical, got %s", rep.Status)
	}
	if len(rep.Anomalies) != 1 || rep.Anomalies[0].Category != models.CategoryZoneCrash {
		t.Errorf("unexpected anomalies: %+v", rep.Anomalies)
	}
	if len(rep.Zones) != 1 || rep.Zones[0].State != models.ZoneCrashed {
		t.Errorf("unexpected zones: %+v", rep.Zones)
	}
	if rep.ErrorCount != 1 {
		t.Errorf("expected 1 error, got %d", rep.ErrorCount)
	}
}

func TestBuildFailsWithoutTelemetry(t *testing.T) {
	b := NewBuilder(nil, &fakeSource{err: errors.New("no such file")}, fakeProber(true), nil, nil, Config{})
	if _, err := b.Build(context.Background()); err == nil {
		t.Fatal("expected a failed telemetry read to fail the build")
	}
}

func TestBuildDegradesWithoutFaultListing(t *testing.T) {
	b := NewBuilder(nil, &fakeSource{entries: healthyWindow()}, fakeProber(true),
		&fakeLister{err: errors.New("control channel down")}, nil, Config{})

	rep, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("a failed fault listing must not fail the build: %v", err)
	}
	if len(rep.ActiveFaults) != 0 {
		t.Errorf("expected no fault context, got %+v", rep.ActiveFaults)
	}
}

func TestBuildKeepsOnlyActiveFaults(t *testing.T) {
	lister := &fakeLister{faults: []models.FaultInfo{
		{ID: models.FaultLatencySpike, Mode: "tick_scoped", Active: true, Activations: 2},
		{ID: models.FaultEventFlood, Mode: "tick_scoped", Active: false, Activations: 0},
	}}
	b := NewBuilder(nil, &fakeSource{entries: healthyWindow()}, fakeProber(true), lister, nil, Config{})

	rep, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(rep.ActiveFaults) != 1 || rep.ActiveFaults[0].ID != models.FaultLatencySpike {
		t.Errorf("expected only the active fault, got %+v", rep.ActiveFaults)
	}
}

func TestBuildUnreachableServerStillReports(t *testing.T) {
	b := NewBuilder(nil, &fakeSource{entries: healthyWindow()}, fakeProber(false), nil, nil, Config{})

	rep, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if rep.ServerReachable {
		t.Error("expected unreachable")
	}
	// Reachability is reported alongside, not folded into, the status.
	if rep.Status != models.StatusHealthy {
		t.Errorf("stale-but-clean telemetry should still grade healthy, got %s", rep.Status)
	}
}
