package detect

import (
	"time"

	"github.com/wowsimlabs/simops/internal/models"
)

// Default thresholds for the four rules.
const (
	DefaultTickWarnMs          = 60.0
	DefaultTickCritMs          = 100.0
	DefaultErrorBurstThreshold = 5
	DefaultErrorBurstWindow    = 10 * time.Second
)

// Config carries the tunable thresholds for anomaly detection. Zero
// fields fall back to the defaults above.
type Config struct {
	TickWarnMs          float64
	TickCritMs          float64
	ErrorBurstThreshold int
	ErrorBurstWindow    time.Duration
}

// Detector runs four independent rule passes over one telemetry window.
// It holds no cross-call state: running it twice on the same input yields
// the same output.
type Detector struct {
	latency     *LatencyRule
	crashes     *CrashRule
	bursts      *BurstRule
	disconnects *DisconnectRule
}

// New constructs a Detector, applying defaults for zero config fields.
func New(cfg Config) *Detector {
	return &Detector{
		latency:     NewLatencyRule(cfg.TickWarnMs, cfg.TickCritMs),
		crashes:     NewCrashRule(),
		bursts:      NewBurstRule(cfg.ErrorBurstThreshold, cfg.ErrorBurstWindow),
		disconnects: NewDisconnectRule(),
	}
}

// Detect returns the concatenation of the four rule passes over the whole
// sequence: rule order first, entry order within a rule. No global
// timestamp re-sort happens here; callers needing chronological order
// must sort. Empty input yields an empty, non-nil slice.
func (d *Detector) Detect(entries []models.TelemetryEntry) []models.Anomaly {
	anomalies := make([]models.Anomaly, 0)
	anomalies = append(anomalies, d.latency.Detect(entries)...)
	anomalies = append(anomalies, d.crashes.Detect(entries)...)
	anomalies = append(anomalies, d.bursts.Detect(entries)...)
	anomalies = append(anomalies, d.disconnects.Detect(entries)...)
	return anomalies
}
