package models

// FaultAction is a deploy intent against the fault injector.
type FaultAction string

const (
	ActionActivate   FaultAction = "activate"
	ActionDeactivate FaultAction = "deactivate"
)

// Valid reports whether the action is activate or deactivate.
func (a FaultAction) Valid() bool {
	return a == ActionActivate || a == ActionDeactivate
}

// Fault IDs registered by the server's injector. The server owns the
// catalogue; these constants only name the well-known scenarios.
const (
	FaultLatencySpike     = "latency-spike"
	FaultSessionCrash     = "session-crash"
	FaultEventFlood       = "event-flood"
	FaultMemoryPressure   = "memory-pressure"
	FaultCascadingFailure = "cascading-failure"
	FaultSlowLeak         = "slow-leak"
	FaultSplitBrain       = "split-brain"
)

// FaultInfo mirrors one fault's status as reported by the control channel.
type FaultInfo struct {
	ID          string `json:"id"`
	Mode        string `json:"mode"`
	Active      bool   `json:"active"`
	Activations uint64 `json:"activations"`
}

// FaultAttribution is a heuristic link between an active fault and the
// anomaly categories observed in the same window.
type FaultAttribution struct {
	FaultID string   `json:"fault_id"`
	Score   float64  `json:"score"`
	Notes   []string `json:"notes,omitempty"`
}
