package models

import "time"

// AnomalyCategory enumerates the detector's rule classes.
type AnomalyCategory string

const (
	CategoryLatencySpike         AnomalyCategory = "latency_spike"
	CategoryZoneCrash            AnomalyCategory = "zone_crash"
	CategoryErrorBurst           AnomalyCategory = "error_burst"
	CategoryUnexpectedDisconnect AnomalyCategory = "unexpected_disconnect"
)

// AnomalySeverity captures how serious a detected anomaly is.
type AnomalySeverity string

const (
	AnomalyWarning  AnomalySeverity = "warning"
	AnomalyCritical AnomalySeverity = "critical"
)

// Anomaly is one detected operational problem. Produced once, never mutated.
type Anomaly struct {
	Category  AnomalyCategory `json:"type"`
	Severity  AnomalySeverity `json:"severity"`
	Timestamp time.Time       `json:"timestamp"`
	Message   string          `json:"message"`
	Details   map[string]any  `json:"details,omitempty"`
}
