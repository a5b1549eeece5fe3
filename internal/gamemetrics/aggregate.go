// Package gamemetrics rolls spellcasting and combat telemetry into the
// optional game-mechanics block of a health report. Like the health
// aggregates it is pure window arithmetic; the Detector never sees any
// of these numbers.
package gamemetrics

import (
	"sort"

	"github.com/wowsimlabs/simops/internal/models"
	"github.com/wowsimlabs/simops/internal/utils"
)

// TopDamageDealers caps the damage leaderboard length.
const TopDamageDealers = 5

// Aggregate computes gameplay stats over one window. Returns nil when
// the window carries no spellcast and no combat entries at all, so the
// report can omit the block instead of showing all-zero gameplay.
func Aggregate(entries []models.TelemetryEntry) *models.GameMechanics {
	if !hasGameplay(entries) {
		return nil
	}
	duration := WindowDuration(entries)
	g := &models.GameMechanics{
		Casts:           castStats(entries, duration),
		DurationSeconds: duration,
	}
	g.Combat, g.TopDamage = combatStats(entries, duration)
	return g
}

// WindowDuration spans the earliest to the latest timestamp across the
// whole window, gameplay or not. Fewer than two entries means no
// measurable span; every per-second rate then degrades to zero.
func WindowDuration(entries []models.TelemetryEntry) float64 {
	if len(entries) < 2 {
		return 0
	}
	first, last := entries[0].Timestamp, entries[0].Timestamp
	for _, e := range entries[1:] {
		if e.Timestamp.Before(first) {
			first = e.Timestamp
		}
		if e.Timestamp.After(last) {
			last = e.Timestamp
		}
	}
	return utils.SpanSeconds(first, last)
}

func hasGameplay(entries []models.TelemetryEntry) bool {
	for _, e := range entries {
		if e.Component == models.ComponentSpellcast || e.Component == models.ComponentCombat {
			return true
		}
	}
	return false
}

func castStats(entries []models.TelemetryEntry, duration float64) models.CastStats {
	var s models.CastStats
	for _, e := range entries {
		if e.Component != models.ComponentSpellcast {
			continue
		}
		switch e.Message {
		case models.MsgCastStarted:
			s.CastsStarted++
		case models.MsgCastCompleted:
			s.CastsCompleted++
		case models.MsgCastInterrupted:
			s.CastsInterrupted++
		case models.MsgCastBlockedByGCD:
			s.GCDBlocked++
		}
	}
	if s.CastsStarted > 0 {
		s.CastSuccessRate = float64(s.CastsCompleted) / float64(s.CastsStarted)
	}
	if attempts := s.CastsStarted + s.GCDBlocked; attempts > 0 {
		s.GCDBlockRate = float64(s.GCDBlocked) / float64(attempts)
	}
	if duration > 0 {
		s.CastRatePerSec = float64(s.CastsStarted) / duration
	}
	return s
}

type attackerAccum struct {
	damage  int
	attacks int
}

func combatStats(entries []models.TelemetryEntry, duration float64) (models.CombatStats, []models.EntityDamage) {
	var stats models.CombatStats
	attackers := make(map[int]*attackerAccum)
	for _, e := range entries {
		if e.Component != models.ComponentCombat {
			continue
		}
		switch e.Message {
		case models.MsgDamageDealt:
			dmg := int(e.Float("actual_damage", 0))
			id := int(e.Float("attacker_id", 0))
			a := attackers[id]
			if a == nil {
				a = &attackerAccum{}
				attackers[id] = a
			}
			a.damage += dmg
			a.attacks++
			stats.TotalDamage += dmg
			stats.TotalAttacks++
		case models.MsgEntityKilled:
			stats.Kills++
		}
	}
	stats.ActiveEntities = len(attackers)
	if duration > 0 {
		stats.OverallDPS = float64(stats.TotalDamage) / duration
	}

	top := make([]models.EntityDamage, 0, len(attackers))
	for id, a := range attackers {
		d := models.EntityDamage{EntityID: id, TotalDamage: a.damage, AttackCount: a.attacks}
		if duration > 0 {
			d.DPS = float64(a.damage) / duration
		}
		top = append(top, d)
	}
	// Damage descending, entity id ascending on ties so map iteration
	// order never shows through.
	sort.Slice(top, func(i, j int) bool {
		if top[i].TotalDamage != top[j].TotalDamage {
			return top[i].TotalDamage > top[j].TotalDamage
		}
		return top[i].EntityID < top[j].EntityID
	})
	if len(top) > TopDamageDealers {
		top = top[:TopDamageDealers]
	}
	return stats, top
}
