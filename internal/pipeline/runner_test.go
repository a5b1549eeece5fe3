package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wowsimlabs/simops/internal/faultctl"
	"github.com/wowsimlabs/simops/internal/models"
)

type healthStep struct {
	status    models.HealthStatus
	reachable bool
	err       error
}

// scriptedHealth replays a fixed sequence of reports, repeating the
// last step once the script runs out.
type scriptedHealth struct {
	steps []healthStep
	calls int
}

func (s *scriptedHealth) Build(ctx context.Context) (models.HealthReport, error) {
	i := s.calls
	if i >= len(s.steps) {
		i = len(s.steps) - 1
	}
	s.calls++
	step := s.steps[i]
	if step.err != nil {
		return models.HealthReport{}, step.err
	}
	return models.HealthReport{Status: step.status, ServerReachable: step.reachable}, nil
}

type fakeController struct {
	calls    []string
	lastOpts faultctl.ActivateOptions
	failOn   string
}

func (f *fakeController) Activate(ctx context.Context, faultID string, opts faultctl.ActivateOptions) error {
	f.calls = append(f.calls, "activate:"+faultID)
	f.lastOpts = opts
	if f.failOn == "activate" {
		return errors.New("control refused")
	}
	return nil
}

func (f *fakeController) Deactivate(ctx context.Context, faultID string) error {
	f.calls = append(f.calls, "deactivate:"+faultID)
	if f.failOn == "deactivate" {
		return errors.New("control refused")
	}
	return nil
}

func okStep(status models.HealthStatus) healthStep {
	return healthStep{status: status, reachable: true}
}

// canaryConfig keeps the canary window tiny so tests finish fast.
func canaryConfig() models.PipelineConfig {
	cfg := models.DefaultPipelineConfig("latency-spike", models.ActionActivate)
	cfg.CanaryDurationSeconds = 0.05
	cfg.CanaryPollIntervalSeconds = 0.01
	return cfg
}

func stageNames(res models.PipelineResult) string {
	names := make([]string, len(res.Stages))
	for i, s := range res.Stages {
		names[i] = string(s.Stage)
	}
	return strings.Join(names, " ")
}

func TestRunPromotesWhenHealthy(t *testing.T) {
	health := &scriptedHealth{steps: []healthStep{okStep(models.StatusHealthy)}}
	ctrl := &fakeController{}
	r := NewRunner(nil, health, ctrl)

	res := r.Run(context.Background(), canaryConfig())

	if res.Outcome != models.OutcomePromoted {
		t.Fatalf("expected promoted, got %s", res.Outcome)
	}
	if got := stageNames(res); got != "build validate canary promote" {
		t.Errorf("unexpected stages: %s", got)
	}
	for _, s := range res.Stages {
		if !s.Passed {
			t.Errorf("stage %s unexpectedly failed: %s", s.Stage, s.Message)
		}
	}
	if len(ctrl.calls) != 1 || ctrl.calls[0] != "activate:latency-spike" {
		t.Errorf("unexpected controller calls: %v", ctrl.calls)
	}
	if res.RunID == "" {
		t.Error("expected a run id")
	}
	if res.TotalDurationSeconds <= 0 {
		t.Errorf("expected positive total duration, got %v", res.TotalDurationSeconds)
	}

	canary := res.Stages[2]
	samples, ok := canary.Details["samples"].([]string)
	if !ok || len(samples) == 0 {
		t.Fatalf("expected recorded samples, got %v", canary.Details)
	}
	if canary.HealthStatus == nil || *canary.HealthStatus != models.StatusHealthy {
		t.Errorf("expected last sample healthy, got %v", canary.HealthStatus)
	}
	if got := res.Stages[3].Message; got != "Hotfix 1.0.0 promoted" {
		t.Errorf("unexpected promote message %q", got)
	}
}

func TestRunRollsBackOnCriticalSample(t *testing.T) {
	health := &scriptedHealth{steps: []healthStep{
		okStep(models.StatusHealthy),
		okStep(models.StatusHealthy),
		okStep(models.StatusCritical),
	}}
	ctrl := &fakeController{}
	r := NewRunner(nil, health, ctrl)

	res := r.Run(context.Background(), canaryConfig())

	if res.Outcome != models.OutcomeRolledBack {
		t.Fatalf("expected rolled_back, got %s", res.Outcome)
	}
	if got := stageNames(res); got != "build validate canary rollback" {
		t.Errorf("unexpected stages: %s", got)
	}

	canary := res.Stages[2]
	if canary.Passed {
		t.Error("expected canary to fail")
	}
	if canary.Message != "Canary failed: sample 1/1 was critical (threshold: critical)" {
		t.Errorf("unexpected canary message %q", canary.Message)
	}

	rb := res.Stages[3]
	if !rb.Passed {
		t.Errorf("expected rollback to succeed: %s", rb.Message)
	}
	if rb.Message != "Rolled back: deactivate latency-spike" {
		t.Errorf("unexpected rollback message %q", rb.Message)
	}
	if rb.Details["action"] != "deactivate" || rb.Details["fault_id"] != "latency-spike" {
		t.Errorf("unexpected rollback details: %v", rb.Details)
	}
	want := []string{"activate:latency-spike", "deactivate:latency-spike"}
	if len(ctrl.calls) != 2 || ctrl.calls[0] != want[0] || ctrl.calls[1] != want[1] {
		t.Errorf("unexpected controller calls: %v", ctrl.calls)
	}
}

func TestRunAbortsWhenUnreachableAtBuild(t *testing.T) {
	health := &scriptedHealth{steps: []healthStep{{status: models.StatusHealthy, reachable: false}}}
	ctrl := &fakeController{}
	r := NewRunner(nil, health, ctrl)

	res := r.Run(context.Background(), canaryConfig())

	if res.Outcome != models.OutcomeAborted {
		t.Fatalf("expected aborted, got %s", res.Outcome)
	}
	if len(res.Stages) != 1 {
		t.Fatalf("expected 1 stage, got %d", len(res.Stages))
	}
	if res.Stages[0].Message != "Server unreachable — cannot deploy" {
		t.Errorf("unexpected message %q", res.Stages[0].Message)
	}
	if len(ctrl.calls) != 0 {
		t.Errorf("expected no deploy actions, got %v", ctrl.calls)
	}
}

func TestRunAbortsWhenCriticalAtBuild(t *testing.T) {
	health := &scriptedHealth{steps: []healthStep{okStep(models.StatusCritical)}}
	r := NewRunner(nil, health, &fakeController{})

	res := r.Run(context.Background(), canaryConfig())

	if res.Outcome != models.OutcomeAborted {
		t.Fatalf("expected aborted, got %s", res.Outcome)
	}
	if res.Stages[0].Message != "Server is critical — resolve before deploying" {
		t.Errorf("unexpected message %q", res.Stages[0].Message)
	}
}

func TestRunAbortsWhenValidateUnreachable(t *testing.T) {
	health := &scriptedHealth{steps: []healthStep{
		okStep(models.StatusHealthy),
		{status: models.StatusHealthy, reachable: false},
	}}
	ctrl := &fakeController{}
	r := NewRunner(nil, health, ctrl)

	res := r.Run(context.Background(), canaryConfig())

	if res.Outcome != models.OutcomeAborted {
		t.Fatalf("expected aborted, got %s", res.Outcome)
	}
	if got := stageNames(res); got != "build validate" {
		t.Errorf("unexpected stages: %s", got)
	}
	if res.Stages[1].Message != "Server unreachable during validation" {
		t.Errorf("unexpected message %q", res.Stages[1].Message)
	}
	if len(ctrl.calls) != 0 {
		t.Errorf("expected no deploy actions, got %v", ctrl.calls)
	}
	if health.calls != 2 {
		t.Errorf("expected 2 health fetches, got %d", health.calls)
	}
}

func TestRunDegradedAtBuildStillDeploys(t *testing.T) {
	health := &scriptedHealth{steps: []healthStep{okStep(models.StatusDegraded)}}
	ctrl := &fakeController{}
	r := NewRunner(nil, health, ctrl)

	res := r.Run(context.Background(), canaryConfig())

	if res.Outcome != models.OutcomePromoted {
		t.Fatalf("expected promoted, got %s", res.Outcome)
	}
	if len(ctrl.calls) != 1 {
		t.Errorf("expected one deploy action, got %v", ctrl.calls)
	}
}

func TestRunDegradedThresholdRollsBack(t *testing.T) {
	health := &scriptedHealth{steps: []healthStep{
		okStep(models.StatusHealthy),
		okStep(models.StatusHealthy),
		okStep(models.StatusDegraded),
	}}
	cfg := canaryConfig()
	cfg.RollbackOn = models.StatusDegraded
	r := NewRunner(nil, health, &fakeController{})

	res := r.Run(context.Background(), cfg)

	if res.Outcome != models.OutcomeRolledBack {
		t.Fatalf("expected rolled_back, got %s", res.Outcome)
	}
	canary := res.Stages[2]
	if canary.Message != "Canary failed: sample 1/1 was degraded (threshold: degraded)" {
		t.Errorf("unexpected canary message %q", canary.Message)
	}
}

func TestRunFetchErrorDuringCanaryCountsCritical(t *testing.T) {
	health := &scriptedHealth{steps: []healthStep{
		okStep(models.StatusHealthy),
		okStep(models.StatusHealthy),
		{err: errors.New("telemetry offline")},
	}}
	r := NewRunner(nil, health, &fakeController{})

	res := r.Run(context.Background(), canaryConfig())

	if res.Outcome != models.OutcomeRolledBack {
		t.Fatalf("expected rolled_back, got %s", res.Outcome)
	}
	canary := res.Stages[2]
	samples, ok := canary.Details["samples"].([]string)
	if !ok || len(samples) != 1 || samples[0] != "critical" {
		t.Errorf("expected one critical sample, got %v", canary.Details)
	}
	if canary.HealthStatus == nil || *canary.HealthStatus != models.StatusCritical {
		t.Errorf("expected critical last sample, got %v", canary.HealthStatus)
	}
}

func TestRunDeployFailureRollsBack(t *testing.T) {
	health := &scriptedHealth{steps: []healthStep{okStep(models.StatusHealthy)}}
	ctrl := &fakeController{failOn: "activate"}
	r := NewRunner(nil, health, ctrl)

	res := r.Run(context.Background(), canaryConfig())

	if res.Outcome != models.OutcomeRolledBack {
		t.Fatalf("expected rolled_back, got %s", res.Outcome)
	}
	if got := stageNames(res); got != "build validate canary rollback" {
		t.Errorf("unexpected stages: %s", got)
	}
	if res.Stages[2].Message != "Deploy action failed: control refused" {
		t.Errorf("unexpected canary message %q", res.Stages[2].Message)
	}
	want := []string{"activate:latency-spike", "deactivate:latency-spike"}
	if len(ctrl.calls) != 2 || ctrl.calls[0] != want[0] || ctrl.calls[1] != want[1] {
		t.Errorf("unexpected controller calls: %v", ctrl.calls)
	}
}

func TestRunRollbackFailureStillRolledBack(t *testing.T) {
	health := &scriptedHealth{steps: []healthStep{
		okStep(models.StatusHealthy),
		okStep(models.StatusHealthy),
		okStep(models.StatusCritical),
	}}
	ctrl := &fakeController{failOn: "deactivate"}
	r := NewRunner(nil, health, ctrl)

	res := r.Run(context.Background(), canaryConfig())

	if res.Outcome != models.OutcomeRolledBack {
		t.Fatalf("expected rolled_back, got %s", res.Outcome)
	}
	rb := res.Stages[len(res.Stages)-1]
	if rb.Stage != models.StageRollback || rb.Passed {
		t.Fatalf("expected failed rollback stage, got %+v", rb)
	}
	if rb.Message != "Rollback action failed: control refused" {
		t.Errorf("unexpected rollback message %q", rb.Message)
	}
}

func TestRunInvalidConfigSkipsAllIO(t *testing.T) {
	health := &scriptedHealth{steps: []healthStep{okStep(models.StatusHealthy)}}
	ctrl := &fakeController{}
	r := NewRunner(nil, health, ctrl)

	cfg := canaryConfig()
	cfg.FaultID = ""
	res := r.Run(context.Background(), cfg)

	if res.Outcome != models.OutcomeAborted {
		t.Fatalf("expected aborted, got %s", res.Outcome)
	}
	if len(res.Stages) != 1 || res.Stages[0].Stage != models.StageBuild {
		t.Fatalf("expected single failed build stage, got %+v", res.Stages)
	}
	if !strings.HasPrefix(res.Stages[0].Message, "Invalid configuration:") {
		t.Errorf("unexpected message %q", res.Stages[0].Message)
	}
	if health.calls != 0 {
		t.Errorf("expected no health fetches, got %d", health.calls)
	}
	if len(ctrl.calls) != 0 {
		t.Errorf("expected no deploy actions, got %v", ctrl.calls)
	}
}

func TestRunPassesActivateOptions(t *testing.T) {
	health := &scriptedHealth{steps: []healthStep{okStep(models.StatusHealthy)}}
	ctrl := &fakeController{}
	r := NewRunner(nil, health, ctrl)

	cfg := canaryConfig()
	cfg.Params = map[string]any{"delay_ms": 250}
	cfg.TargetZoneID = 3
	cfg.DurationTicks = 100
	res := r.Run(context.Background(), cfg)

	if res.Outcome != models.OutcomePromoted {
		t.Fatalf("expected promoted, got %s", res.Outcome)
	}
	if ctrl.lastOpts.TargetZoneID != 3 || ctrl.lastOpts.DurationTicks != 100 {
		t.Errorf("unexpected options: %+v", ctrl.lastOpts)
	}
	if ctrl.lastOpts.Params["delay_ms"] != 250 {
		t.Errorf("unexpected params: %v", ctrl.lastOpts.Params)
	}
}
