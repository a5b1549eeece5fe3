package detect

import (
	"fmt"

	"github.com/wowsimlabs/simops/internal/models"
)

// LatencyRule flags game-loop ticks whose duration crossed the warning
// or critical threshold. Critical is checked first and is exclusive with
// warning: one tick never yields two anomalies.
type LatencyRule struct {
	WarnMs float64
	CritMs float64
}

// NewLatencyRule builds the rule, substituting defaults for
// non-positive thresholds.
func NewLatencyRule(warnMs, critMs float64) *LatencyRule {
	if warnMs <= 0 {
		warnMs = DefaultTickWarnMs
	}
	if critMs <= 0 {
		critMs = DefaultTickCritMs
	}
	return &LatencyRule{WarnMs: warnMs, CritMs: critMs}
}

// Detect scans tick-completion metrics from the game loop. Entries of any
// other type, component, or message are ignored, as is a missing
// duration_ms (treated as 0 and therefore never anomalous).
func (r *LatencyRule) Detect(entries []models.TelemetryEntry) []models.Anomaly {
	var anomalies []models.Anomaly
	for _, e := range entries {
		if e.Type != models.EntryTypeMetric || e.Component != models.ComponentGameLoop || e.Message != models.MsgTickCompleted {
			continue
		}
		duration := e.Float("duration_ms", 0)
		switch {
		case duration >= r.CritMs:
			anomalies = append(anomalies, models.Anomaly{
				Category:  models.CategoryLatencySpike,
				Severity:  models.AnomalyCritical,
				Timestamp: e.Timestamp,
				Message:   fmt.Sprintf("Tick duration %gms exceeds critical threshold (%gms)", duration, r.CritMs),
				Details:   map[string]any{"duration_ms": duration, "threshold_ms": r.CritMs},
			})
		case duration >= r.WarnMs:
			anomalies = append(anomalies, models.Anomaly{
				Category:  models.CategoryLatencySpike,
				Severity:  models.AnomalyWarning,
				Timestamp: e.Timestamp,
				Message:   fmt.Sprintf("Tick duration %gms exceeds warning threshold (%gms)", duration, r.WarnMs),
				Details:   map[string]any{"duration_ms": duration, "threshold_ms": r.WarnMs},
			})
		}
	}
	return anomalies
}
