package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wowsimlabs/simops/internal/faultctl"
	"github.com/wowsimlabs/simops/internal/metrics"
	"github.com/wowsimlabs/simops/internal/models"
)

// HealthFetcher supplies a fresh health report per call.
type HealthFetcher interface {
	Build(ctx context.Context) (models.HealthReport, error)
}

// FaultController issues the deploy and rollback actions. Satisfied by
// the faultctl client.
type FaultController interface {
	Activate(ctx context.Context, faultID string, opts faultctl.ActivateOptions) error
	Deactivate(ctx context.Context, faultID string) error
}

// Runner executes one pipeline run end to end. It assumes single-flight
// invocation: two concurrent runs against the same fault are the
// caller's problem, not coordinated here.
type Runner struct {
	logger *slog.Logger
	health HealthFetcher
	ctrl   FaultController
}

// NewRunner wires the runner's collaborators.
func NewRunner(logger *slog.Logger, health HealthFetcher, ctrl FaultController) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger, health: health, ctrl: ctrl}
}

// Run drives build → validate → deploy → canary → promote|rollback and
// always returns a terminal result, never an error: every failure mode
// is a failed stage inside the result. Stage durations are wall clock
// from stage entry; the total spans the whole call, so inter-stage time
// counts too.
func (r *Runner) Run(ctx context.Context, cfg models.PipelineConfig) models.PipelineResult {
	result := models.PipelineResult{
		RunID:  uuid.NewString(),
		Config: cfg,
		Stages: make([]models.StageResult, 0, 5),
	}
	runStart := time.Now()
	finish := func(outcome models.PipelineOutcome) models.PipelineResult {
		result.Outcome = outcome
		result.TotalDurationSeconds = time.Since(runStart).Seconds()
		metrics.ObservePipelineRun(time.Since(runStart), outcome)
		r.logger.Info("pipeline finished",
			slog.String("run_id", result.RunID),
			slog.String("outcome", string(outcome)),
			slog.Int("stages", len(result.Stages)))
		return result
	}

	if err := cfg.Validate(); err != nil {
		result.Stages = append(result.Stages, models.StageResult{
			Stage:   models.StageBuild,
			Passed:  false,
			Message: fmt.Sprintf("Invalid configuration: %v", err),
		})
		return finish(models.OutcomeAborted)
	}

	r.logger.Info("pipeline starting",
		slog.String("run_id", result.RunID),
		slog.String("fault_id", cfg.FaultID),
		slog.String("action", string(cfg.Action)),
		slog.String("version", cfg.Version))

	// Build gate.
	stage := r.fetchAndGate(ctx, models.StageBuild, CheckBuildGate)
	result.Stages = append(result.Stages, stage)
	if !stage.Passed {
		return finish(models.OutcomeAborted)
	}

	// Validate gate, on a fresh report.
	stage = r.fetchAndGate(ctx, models.StageValidate, CheckValidateGate)
	result.Stages = append(result.Stages, stage)
	if !stage.Passed {
		return finish(models.OutcomeAborted)
	}

	// Deploy action. Not a stage of its own; a failure surfaces as a
	// failed canary stage and still rolls back, since the command may
	// have half-applied before the error.
	deployStart := time.Now()
	if err := r.applyAction(ctx, cfg.Action, cfg); err != nil {
		r.logger.Error("deploy action failed", slog.Any("error", err))
		result.Stages = append(result.Stages, models.StageResult{
			Stage:           models.StageCanary,
			Passed:          false,
			Message:         fmt.Sprintf("Deploy action failed: %v", err),
			DurationSeconds: time.Since(deployStart).Seconds(),
		})
		result.Stages = append(result.Stages, r.rollback(ctx, cfg))
		return finish(models.OutcomeRolledBack)
	}

	// Canary polling. Deploy time is not part of the stage duration,
	// only of the total.
	canaryStart := time.Now()
	samples, passed, msg := r.runCanary(ctx, cfg)
	canaryStage := models.StageResult{
		Stage:           models.StageCanary,
		Passed:          passed,
		Message:         msg,
		DurationSeconds: time.Since(canaryStart).Seconds(),
		Details:         map[string]any{"samples": statusStrings(samples)},
	}
	if len(samples) > 0 {
		last := samples[len(samples)-1]
		canaryStage.HealthStatus = &last
	}
	result.Stages = append(result.Stages, canaryStage)

	if !passed {
		result.Stages = append(result.Stages, r.rollback(ctx, cfg))
		return finish(models.OutcomeRolledBack)
	}

	promoteStart := time.Now()
	result.Stages = append(result.Stages, models.StageResult{
		Stage:           models.StagePromote,
		Passed:          true,
		Message:         fmt.Sprintf("Hotfix %s promoted", cfg.Version),
		DurationSeconds: time.Since(promoteStart).Seconds(),
	})
	return finish(models.OutcomePromoted)
}

// fetchAndGate fetches one report and applies a gate to it. A failed
// fetch is a failed gate with the fetch error in the message.
func (r *Runner) fetchAndGate(ctx context.Context, stage models.PipelineStage, gate func(models.HealthReport) models.StageResult) models.StageResult {
	start := time.Now()
	rep, err := r.health.Build(ctx)
	var res models.StageResult
	if err != nil {
		res = models.StageResult{
			Stage:   stage,
			Passed:  false,
			Message: fmt.Sprintf("Health report unavailable: %v", err),
		}
	} else {
		res = gate(rep)
	}
	res.DurationSeconds = time.Since(start).Seconds()
	r.logger.Info("stage complete",
		slog.String("stage", string(res.Stage)),
		slog.Bool("passed", res.Passed),
		slog.String("message", res.Message))
	return res
}

// runCanary samples health at the configured interval until the duration
// elapses or a sample trips the rollback threshold. The first sample is
// taken immediately. A failed fetch counts as a genuine critical sample:
// a server that cannot be assessed must not pass a canary.
func (r *Runner) runCanary(ctx context.Context, cfg models.PipelineConfig) ([]models.HealthStatus, bool, string) {
	duration := time.Duration(cfg.CanaryDurationSeconds * float64(time.Second))
	interval := time.Duration(cfg.CanaryPollIntervalSeconds * float64(time.Second))

	var samples []models.HealthStatus
	start := time.Now()
	for time.Since(start) < duration {
		sample := models.StatusCritical
		rep, err := r.health.Build(ctx)
		if err != nil {
			r.logger.Warn("canary health fetch failed, sampling as critical", slog.Any("error", err))
		} else {
			sample = rep.Status
		}
		samples = append(samples, sample)
		metrics.ObserveCanarySample(sample)
		r.logger.Info("canary sample",
			slog.Int("sample", len(samples)),
			slog.String("status", string(sample)))

		if ok, msg := EvaluateCanary(samples, cfg.RollbackOn); !ok {
			return samples, false, msg
		}
		sleepCtx(ctx, interval)
	}
	_, msg := EvaluateCanary(samples, cfg.RollbackOn)
	return samples, true, msg
}

// rollback executes the inverse deploy action synchronously and records
// it as its own timed stage. The outcome is rolled_back whether or not
// the inverse call itself succeeded; the stage says which.
func (r *Runner) rollback(ctx context.Context, cfg models.PipelineConfig) models.StageResult {
	start := time.Now()
	inverse := InverseAction(cfg.Action)
	stage := models.StageResult{
		Stage: models.StageRollback,
		Details: map[string]any{
			"action":   string(inverse),
			"fault_id": cfg.FaultID,
		},
	}
	if err := r.applyAction(ctx, inverse, cfg); err != nil {
		r.logger.Error("rollback action failed", slog.Any("error", err))
		stage.Passed = false
		stage.Message = fmt.Sprintf("Rollback action failed: %v", err)
	} else {
		stage.Passed = true
		stage.Message = fmt.Sprintf("Rolled back: %s %s", inverse, cfg.FaultID)
	}
	stage.DurationSeconds = time.Since(start).Seconds()
	return stage
}

func (r *Runner) applyAction(ctx context.Context, action models.FaultAction, cfg models.PipelineConfig) error {
	if r.ctrl == nil {
		return fmt.Errorf("fault controller not configured")
	}
	if action == models.ActionActivate {
		return r.ctrl.Activate(ctx, cfg.FaultID, faultctl.ActivateOptions{
			Params:        cfg.Params,
			TargetZoneID:  cfg.TargetZoneID,
			DurationTicks: cfg.DurationTicks,
		})
	}
	return r.ctrl.Deactivate(ctx, cfg.FaultID)
}

func statusStrings(samples []models.HealthStatus) []string {
	out := make([]string, len(samples))
	for i, s := range samples {
		out[i] = string(s)
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
