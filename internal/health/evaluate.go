package health

import (
	"github.com/wowsimlabs/simops/internal/models"
)

// EvalInput bundles the aggregates the evaluator grades. Tick and Game
// are optional; nil means the window carried no such signal.
type EvalInput struct {
	Tick             *models.TickHealth
	Zones            []models.ZoneHealth
	Anomalies        []models.Anomaly
	Game             *models.GameMechanics
	ConnectedPlayers int
}

type rule struct {
	name    string
	applies func(EvalInput) bool
	result  models.HealthStatus
}

// ladder is the evaluator's rule table. Order is the contract: the first
// matching rule decides and later rules are never consulted, so a crash
// plus a warning-level disconnect grades critical, not degraded.
var ladder = []rule{
	{"critical anomaly", hasCriticalAnomaly, models.StatusCritical},
	{"crashed zone", hasCrashedZone, models.StatusCritical},
	{"warning anomaly", hasWarningAnomaly, models.StatusDegraded},
	{"degraded zone", hasDegradedZone, models.StatusDegraded},
	{"tick overrun above 10%", tickOverrunHigh, models.StatusDegraded},
	{"gcd block rate above 50%", gcdSaturated, models.StatusDegraded},
	{"cast success below 50%", castsFailing, models.StatusDegraded},
	{"no gameplay activity despite connected players", activityStalled, models.StatusDegraded},
}

// Evaluate grades one window of aggregates. Pure and total: any input
// yields one of the three statuses, never an error.
func Evaluate(in EvalInput) models.HealthStatus {
	status, _ := EvaluateReason(in)
	return status
}

// EvaluateReason also names the rule that decided, for logs and tests.
// A healthy verdict reports "all rules passed".
func EvaluateReason(in EvalInput) (models.HealthStatus, string) {
	for _, r := range ladder {
		if r.applies(in) {
			return r.result, r.name
		}
	}
	return models.StatusHealthy, "all rules passed"
}

func hasCriticalAnomaly(in EvalInput) bool {
	for _, a := range in.Anomalies {
		if a.Severity == models.AnomalyCritical {
			return true
		}
	}
	return false
}

func hasWarningAnomaly(in EvalInput) bool {
	for _, a := range in.Anomalies {
		if a.Severity == models.AnomalyWarning {
			return true
		}
	}
	return false
}

func hasCrashedZone(in EvalInput) bool {
	for _, z := range in.Zones {
		if z.State == models.ZoneCrashed {
			return true
		}
	}
	return false
}

func hasDegradedZone(in EvalInput) bool {
	for _, z := range in.Zones {
		if z.State == models.ZoneDegraded {
			return true
		}
	}
	return false
}

func tickOverrunHigh(in EvalInput) bool {
	return in.Tick != nil && in.Tick.OverrunPct > 10
}

func gcdSaturated(in EvalInput) bool {
	return in.Game != nil && in.Game.Casts.GCDBlockRate > 0.5
}

func castsFailing(in EvalInput) bool {
	return in.Game != nil && in.Game.Casts.CastsStarted > 0 && in.Game.Casts.CastSuccessRate < 0.5
}

// activityStalled catches a server whose tick loop looks fine but which
// has silently stopped processing player input: people are connected yet
// the window shows neither an attack nor a cast attempt.
func activityStalled(in EvalInput) bool {
	return in.Game != nil && in.ConnectedPlayers > 0 &&
		in.Game.Combat.TotalAttacks == 0 && in.Game.Casts.CastsStarted == 0
}
