package models

// CastStats aggregates spell-casting telemetry over one window.
type CastStats struct {
	CastsStarted     int     `json:"casts_started"`
	CastsCompleted   int     `json:"casts_completed"`
	CastsInterrupted int     `json:"casts_interrupted"`
	GCDBlocked       int     `json:"gcd_blocked"`
	CastSuccessRate  float64 `json:"cast_success_rate"`
	GCDBlockRate     float64 `json:"gcd_block_rate"`
	CastRatePerSec   float64 `json:"cast_rate_per_sec"`
}

// EntityDamage is one attacker's damage roll-up.
type EntityDamage struct {
	EntityID    int     `json:"entity_id"`
	TotalDamage int     `json:"total_damage"`
	DPS         float64 `json:"dps"`
	AttackCount int     `json:"attack_count"`
}

// CombatStats aggregates combat telemetry over one window.
type CombatStats struct {
	TotalDamage    int     `json:"total_damage"`
	TotalAttacks   int     `json:"total_attacks"`
	Kills          int     `json:"kills"`
	ActiveEntities int     `json:"active_entities"`
	OverallDPS     float64 `json:"overall_dps"`
}

// GameMechanics is the optional gameplay signal attached to a health
// report. Nil when the window shows no spellcast or combat activity.
type GameMechanics struct {
	Casts           CastStats      `json:"cast_metrics"`
	Combat          CombatStats    `json:"combat_metrics"`
	TopDamage       []EntityDamage `json:"top_damage_dealers"`
	DurationSeconds float64        `json:"duration_seconds"`
}
