// Package pipeline drives the hotfix deployment state machine: build,
// validate, deploy action, canary, then promote or rollback. Gates are
// pure functions; the Runner owns all timing and I/O.
package pipeline

import (
	"fmt"

	"github.com/wowsimlabs/simops/internal/models"
)

// CheckBuildGate grades the report fetched at build time. The server
// must be reachable and not critical; degraded is accepted because the
// deploy may be the remedy.
func CheckBuildGate(rep models.HealthReport) models.StageResult {
	status := rep.Status
	switch {
	case !rep.ServerReachable:
		return models.StageResult{
			Stage:        models.StageBuild,
			Passed:       false,
			Message:      "Server unreachable — cannot deploy",
			HealthStatus: &status,
		}
	case rep.Status == models.StatusCritical:
		return models.StageResult{
			Stage:        models.StageBuild,
			Passed:       false,
			Message:      "Server is critical — resolve before deploying",
			HealthStatus: &status,
		}
	default:
		return models.StageResult{
			Stage:        models.StageBuild,
			Passed:       true,
			Message:      "Build preconditions met",
			HealthStatus: &status,
		}
	}
}

// CheckValidateGate grades the fresh report fetched after build. Only
// reachability matters here; the canary watches the status.
func CheckValidateGate(rep models.HealthReport) models.StageResult {
	status := rep.Status
	if !rep.ServerReachable {
		return models.StageResult{
			Stage:        models.StageValidate,
			Passed:       false,
			Message:      "Server unreachable during validation",
			HealthStatus: &status,
		}
	}
	return models.StageResult{
		Stage:        models.StageValidate,
		Passed:       true,
		Message:      "Validation passed",
		HealthStatus: &status,
	}
}

// EvaluateCanary grades a sample sequence against the rollback
// threshold. The first sample at or above the threshold fails the
// canary; unknown statuses rank as critical.
func EvaluateCanary(samples []models.HealthStatus, threshold models.HealthStatus) (bool, string) {
	level := threshold.Rank()
	for i, sample := range samples {
		if sample.Rank() >= level {
			return false, fmt.Sprintf("Canary failed: sample %d/%d was %s (threshold: %s)",
				i+1, len(samples), sample, threshold)
		}
	}
	return true, fmt.Sprintf("Canary passed: %d samples all below %s", len(samples), threshold)
}

// InverseAction is the logical rollback of a deploy action.
func InverseAction(action models.FaultAction) models.FaultAction {
	if action == models.ActionActivate {
		return models.ActionDeactivate
	}
	return models.ActionActivate
}
