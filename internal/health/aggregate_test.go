package health

import (
	"testing"
	"time"

	"github.com/wowsimlabs/simops/internal/models"
)

var aggBase = time.Date(2026, 2, 23, 12, 0, 0, 0, time.UTC)

func windowEntry(offsetSec float64, typ models.EntryType, component, message string, data map[string]any) models.TelemetryEntry {
	return models.TelemetryEntry{
		SchemaVersion: 1,
		Timestamp:     aggBase.Add(time.Duration(offsetSec * float64(time.Second))),
		Type:          typ,
		Component:     component,
		Message:       message,
		Data:          data,
	}
}

func loopTick(offsetSec float64, tick int, durationMs float64, overrun bool) models.TelemetryEntry {
	return windowEntry(offsetSec, models.EntryTypeMetric, models.ComponentGameLoop, models.MsgTickCompleted,
		map[string]any{"tick": float64(tick), "duration_ms": durationMs, "overrun": overrun})
}

func zoneTick(offsetSec float64, zoneID int, durationMs float64) models.TelemetryEntry {
	return windowEntry(offsetSec, models.EntryTypeMetric, models.ComponentZone, models.MsgZoneTickCompleted,
		map[string]any{"zone_id": float64(zoneID), "tick": float64(1), "duration_ms": durationMs})
}

func zoneCrash(offsetSec float64, zoneID int) models.TelemetryEntry {
	return windowEntry(offsetSec, models.EntryTypeError, models.ComponentZone, models.MsgZoneTickException,
		map[string]any{"zone_id": float64(zoneID), "error": "tick blew up"})
}

func TestComputeTickHealth(t *testing.T) {
	entries := []models.TelemetryEntry{
		loopTick(0, 100, 40, false),
		loopTick(1, 101, 60, false),
		loopTick(2, 102, 80, true),
		// Zone ticks must not leak into loop stats.
		zoneTick(3, 1, 500),
	}
	th := ComputeTickHealth(entries)
	if th == nil {
		t.Fatal("expected tick health, got nil")
	}
	if th.TotalTicks != 3 {
		t.Errorf("expected 3 ticks, got %d", th.TotalTicks)
	}
	if th.AvgDurationMs != 60 {
		t.Errorf("expected avg 60ms, got %g", th.AvgDurationMs)
	}
	if th.MinDurationMs != 40 || th.MaxDurationMs != 80 {
		t.Errorf("expected min 40 / max 80, got %g / %g", th.MinDurationMs, th.MaxDurationMs)
	}
	if th.OverrunCount != 1 {
		t.Errorf("expected 1 overrun, got %d", th.OverrunCount)
	}
	if th.OverrunPct < 33.3 || th.OverrunPct > 33.4 {
		t.Errorf("expected overrun pct near 33.3, got %g", th.OverrunPct)
	}
}

func TestComputeTickHealthEmptyWindow(t *testing.T) {
	if th := ComputeTickHealth(nil); th != nil {
		t.Fatalf("expected nil for an empty window, got %+v", th)
	}
	// A window with only zone activity has no loop ticks either.
	if th := ComputeTickHealth([]models.TelemetryEntry{zoneTick(0, 1, 10)}); th != nil {
		t.Fatalf("expected nil without game-loop ticks, got %+v", th)
	}
}

func TestSummarizeZonesCrashDominates(t *testing.T) {
	entries := []models.TelemetryEntry{
		zoneTick(0, 2, 10),
		zoneTick(1, 1, 20),
		zoneTick(2, 2, 30),
		zoneCrash(3, 2),
		zoneTick(4, 2, 50),
	}
	zones := SummarizeZones(entries)
	if len(zones) != 2 {
		t.Fatalf("expected 2 zones, got %d", len(zones))
	}
	if zones[0].ZoneID != 1 || zones[1].ZoneID != 2 {
		t.Fatalf("expected ascending zone ids, got %d then %d", zones[0].ZoneID, zones[1].ZoneID)
	}
	z2 := zones[1]
	if z2.State != models.ZoneCrashed {
		t.Errorf("a crash must mark the zone CRASHED despite %d good ticks, got %s", z2.TickCount, z2.State)
	}
	if z2.TickCount != 3 {
		t.Errorf("expected 3 ticks for zone 2, got %d", z2.TickCount)
	}
	if z2.ErrorCount != 1 {
		t.Errorf("expected 1 error for zone 2, got %d", z2.ErrorCount)
	}
	if z2.AvgTickDurationMs != 30 {
		t.Errorf("expected avg 30ms for zone 2, got %g", z2.AvgTickDurationMs)
	}
	if zones[0].State != models.ZoneActive {
		t.Errorf("zone 1 should stay ACTIVE, got %s", zones[0].State)
	}
}

func TestSummarizeZonesSkipsUnattributable(t *testing.T) {
	entries := []models.TelemetryEntry{
		windowEntry(0, models.EntryTypeMetric, models.ComponentZone, models.MsgZoneTickCompleted,
			map[string]any{"duration_ms": 10.0}),
	}
	if zones := SummarizeZones(entries); len(zones) != 0 {
		t.Fatalf("entries without zone_id must be skipped, got %d zones", len(zones))
	}
}

func TestCountConnectedPlayers(t *testing.T) {
	accept := func(offsetSec float64, session int) models.TelemetryEntry {
		return windowEntry(offsetSec, models.EntryTypeEvent, models.ComponentGameServer, models.MsgConnectionAccepted,
			map[string]any{"session_id": float64(session)})
	}
	drop := func(offsetSec float64, session int) models.TelemetryEntry {
		return windowEntry(offsetSec, models.EntryTypeEvent, models.ComponentGameServer, models.MsgClientDisconnected,
			map[string]any{"session_id": float64(session)})
	}

	entries := []models.TelemetryEntry{accept(0, 1), accept(1, 2), accept(2, 3), drop(3, 1)}
	if n := CountConnectedPlayers(entries); n != 2 {
		t.Errorf("expected 2 connected players, got %d", n)
	}

	// More disconnects than accepts in the window clamps at zero.
	entries = []models.TelemetryEntry{drop(0, 7), drop(1, 8)}
	if n := CountConnectedPlayers(entries); n != 0 {
		t.Errorf("expected clamp at 0, got %d", n)
	}
}

func TestUptimeTicks(t *testing.T) {
	entries := []models.TelemetryEntry{
		loopTick(0, 900, 40, false),
		loopTick(1, 901, 40, false),
		loopTick(2, 902, 40, false),
	}
	if got := UptimeTicks(entries); got != 902 {
		t.Errorf("expected uptime 902, got %d", got)
	}
	if got := UptimeTicks(nil); got != 0 {
		t.Errorf("expected 0 for empty window, got %d", got)
	}
}

func TestCountErrors(t *testing.T) {
	entries := []models.TelemetryEntry{
		zoneCrash(0, 1),
		loopTick(1, 10, 40, false),
		windowEntry(2, models.EntryTypeError, models.ComponentSession, "Session state corrupt", nil),
	}
	if n := CountErrors(entries); n != 2 {
		t.Errorf("expected 2 errors, got %d", n)
	}
}
