// Package health turns raw telemetry windows into per-window aggregates
// and grades them. Everything here is pure: same window in, same
// aggregates out, no I/O and no state carried between calls.
package health

import (
	"github.com/wowsimlabs/simops/internal/models"
)

// ComputeTickHealth summarises the game loop's tick-completed metrics in
// the window. Returns nil when the window holds none, which the report
// renders as "tick stats unavailable" rather than a row of zeros.
func ComputeTickHealth(entries []models.TelemetryEntry) *models.TickHealth {
	var (
		count    int
		total    float64
		min, max float64
		overruns int
	)
	for _, e := range entries {
		if e.Type != models.EntryTypeMetric || e.Component != models.ComponentGameLoop || e.Message != models.MsgTickCompleted {
			continue
		}
		d := e.Float("duration_ms", 0)
		if count == 0 || d < min {
			min = d
		}
		if count == 0 || d > max {
			max = d
		}
		total += d
		count++
		if e.Bool("overrun", false) {
			overruns++
		}
	}
	if count == 0 {
		return nil
	}
	return &models.TickHealth{
		TotalTicks:    count,
		AvgDurationMs: total / float64(count),
		MaxDurationMs: max,
		MinDurationMs: min,
		OverrunCount:  overruns,
		OverrunPct:    100 * float64(overruns) / float64(count),
	}
}
