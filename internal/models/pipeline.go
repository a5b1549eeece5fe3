package models

import "fmt"

// PipelineStage names one step of the canary deployment state machine.
type PipelineStage string

const (
	StageBuild    PipelineStage = "build"
	StageValidate PipelineStage = "validate"
	StageCanary   PipelineStage = "canary"
	StagePromote  PipelineStage = "promote"
	StageRollback PipelineStage = "rollback"
)

// PipelineOutcome is the terminal result of one pipeline run.
type PipelineOutcome string

const (
	OutcomePromoted   PipelineOutcome = "promoted"
	OutcomeRolledBack PipelineOutcome = "rolled_back"
	OutcomeAborted    PipelineOutcome = "aborted"
)

// PipelineConfig is the deployment intent for one run. Immutable once the
// run starts.
type PipelineConfig struct {
	Version                   string         `json:"version"`
	FaultID                   string         `json:"fault_id"`
	Action                    FaultAction    `json:"action"`
	Params                    map[string]any `json:"params"`
	TargetZoneID              int            `json:"target_zone_id"`
	DurationTicks             uint64         `json:"duration_ticks"`
	CanaryDurationSeconds     float64        `json:"canary_duration_seconds"`
	CanaryPollIntervalSeconds float64        `json:"canary_poll_interval_seconds"`
	RollbackOn                HealthStatus   `json:"rollback_on"`
	GameHost                  string         `json:"game_host"`
	GamePort                  int            `json:"game_port"`
	ControlHost               string         `json:"control_host"`
	ControlPort               int            `json:"control_port"`
	LogFile                   string         `json:"log_file,omitempty"`
}

// DefaultPipelineConfig returns a config for the given fault and action
// with every optional field at its default.
func DefaultPipelineConfig(faultID string, action FaultAction) PipelineConfig {
	return PipelineConfig{
		Version:                   "1.0.0",
		FaultID:                   faultID,
		Action:                    action,
		Params:                    map[string]any{},
		TargetZoneID:              0,
		DurationTicks:             0,
		CanaryDurationSeconds:     10.0,
		CanaryPollIntervalSeconds: 2.0,
		RollbackOn:                StatusCritical,
		GameHost:                  "localhost",
		GamePort:                  8080,
		ControlHost:               "localhost",
		ControlPort:               8081,
	}
}

// Validate rejects configs that would misbehave mid-run. Called before any
// I/O happens.
func (c PipelineConfig) Validate() error {
	if c.FaultID == "" {
		return fmt.Errorf("fault id is required")
	}
	if !c.Action.Valid() {
		return fmt.Errorf("invalid action %q: must be activate or deactivate", c.Action)
	}
	if c.RollbackOn != StatusDegraded && c.RollbackOn != StatusCritical {
		return fmt.Errorf("invalid rollback threshold %q: must be degraded or critical", c.RollbackOn)
	}
	if c.CanaryDurationSeconds <= 0 {
		return fmt.Errorf("canary duration must be positive, got %v", c.CanaryDurationSeconds)
	}
	if c.CanaryPollIntervalSeconds <= 0 {
		return fmt.Errorf("canary poll interval must be positive, got %v", c.CanaryPollIntervalSeconds)
	}
	return nil
}

// StageResult records one executed stage. Stages are appended in execution
// order and never reordered.
type StageResult struct {
	Stage           PipelineStage  `json:"stage"`
	Passed          bool           `json:"passed"`
	Message         string         `json:"message"`
	DurationSeconds float64        `json:"duration_seconds"`
	HealthStatus    *HealthStatus  `json:"health_status,omitempty"`
	Details         map[string]any `json:"details,omitempty"`
}

// PipelineResult is the terminal, immutable outcome of one run.
type PipelineResult struct {
	RunID                string          `json:"run_id"`
	Config               PipelineConfig  `json:"config"`
	Stages               []StageResult   `json:"stages"`
	Outcome              PipelineOutcome `json:"outcome"`
	TotalDurationSeconds float64         `json:"total_duration_seconds"`
}
