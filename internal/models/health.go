package models

import "time"

// HealthStatus is the graded assessment produced by the evaluator.
type HealthStatus string

const (
	StatusHealthy  HealthStatus = "healthy"
	StatusDegraded HealthStatus = "degraded"
	StatusCritical HealthStatus = "critical"
)

// Rank orders statuses by severity: healthy 0, degraded 1, critical 2.
// Unknown values rank as critical.
func (s HealthStatus) Rank() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// Valid reports whether the status is one of the three known levels.
func (s HealthStatus) Valid() bool {
	switch s {
	case StatusHealthy, StatusDegraded, StatusCritical:
		return true
	}
	return false
}

// TickHealth summarises tick-loop stats over one window. Nil when the
// window holds no tick-completed metrics.
type TickHealth struct {
	TotalTicks    int     `json:"total_ticks"`
	AvgDurationMs float64 `json:"avg_duration_ms"`
	MaxDurationMs float64 `json:"max_duration_ms"`
	MinDurationMs float64 `json:"min_duration_ms"`
	OverrunCount  int     `json:"overrun_count"`
	OverrunPct    float64 `json:"overrun_pct"`
}

// ZoneState describes a zone's condition within the observed window.
type ZoneState string

const (
	ZoneActive ZoneState = "ACTIVE"
	// ZoneDegraded is honoured by the evaluator but no producer assigns it yet.
	ZoneDegraded ZoneState = "DEGRADED"
	ZoneCrashed  ZoneState = "CRASHED"
)

// ZoneHealth is the per-zone roll-up for one window. One crash error marks
// the zone CRASHED regardless of how many successful ticks it also logged.
type ZoneHealth struct {
	ZoneID            int       `json:"zone_id"`
	State             ZoneState `json:"state"`
	TickCount         int       `json:"tick_count"`
	ErrorCount        int       `json:"error_count"`
	AvgTickDurationMs float64   `json:"avg_tick_duration_ms"`
}

// HealthReport is one immutable health snapshot. Each evaluation builds a
// fresh report; a newer report supersedes, never updates, an older one.
type HealthReport struct {
	ID               string         `json:"id"`
	Timestamp        time.Time      `json:"timestamp"`
	Status           HealthStatus   `json:"status"`
	ServerReachable  bool           `json:"server_reachable"`
	Tick             *TickHealth    `json:"tick,omitempty"`
	Zones            []ZoneHealth   `json:"zones"`
	ConnectedPlayers int            `json:"connected_players"`
	Anomalies        []Anomaly      `json:"anomalies"`
	ActiveFaults     []FaultInfo    `json:"active_faults"`
	ErrorCount       int            `json:"error_count"`
	UptimeTicks      uint64         `json:"uptime_ticks"`
	Game             *GameMechanics `json:"game_mechanics,omitempty"`
}
