package models

import "time"

// EntryType enumerates telemetry record categories.
type EntryType string

const (
	EntryTypeMetric EntryType = "metric"
	EntryTypeEvent  EntryType = "event"
	EntryTypeHealth EntryType = "health"
	EntryTypeError  EntryType = "error"
)

// Valid reports whether the type is one of the known categories.
func (t EntryType) Valid() bool {
	switch t {
	case EntryTypeMetric, EntryTypeEvent, EntryTypeHealth, EntryTypeError:
		return true
	}
	return false
}

// Components and messages emitted by the server that the analysis layers
// key on. The server owns this vocabulary; changing it here without a
// server release breaks detection silently.
const (
	ComponentGameLoop   = "game_loop"
	ComponentGameServer = "game_server"
	ComponentZone       = "zone"
	ComponentSpellcast  = "spellcast"
	ComponentCombat     = "combat"
	ComponentSession    = "session"
	ComponentServer     = "server"
	ComponentFault      = "fault"

	MsgTickCompleted      = "Tick completed"
	MsgZoneTickCompleted  = "Zone tick completed"
	MsgZoneTickException  = "Zone tick exception"
	MsgConnectionAccepted = "Connection accepted"
	MsgClientDisconnected = "Client disconnected"
	MsgCastStarted        = "Cast started"
	MsgCastCompleted      = "Cast completed"
	MsgCastInterrupted    = "Cast interrupted"
	MsgCastBlockedByGCD   = "Cast blocked by GCD"
	MsgDamageDealt        = "Damage dealt"
	MsgEntityKilled       = "Entity killed"
)

// TelemetryEntry is a single structured record from the server's JSONL log.
// Entries arrive in non-decreasing timestamp order and are never re-sorted
// downstream.
type TelemetryEntry struct {
	SchemaVersion int            `json:"v"`
	Timestamp     time.Time      `json:"timestamp"`
	Type          EntryType      `json:"type"`
	Component     string         `json:"component"`
	Message       string         `json:"message"`
	Data          map[string]any `json:"data,omitempty"`
}

// Float returns a numeric data attribute, or fallback when absent or non-numeric.
func (e TelemetryEntry) Float(key string, fallback float64) float64 {
	v, ok := e.Data[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	}
	return fallback
}

// Bool returns a boolean data attribute, or fallback when absent or non-boolean.
func (e TelemetryEntry) Bool(key string, fallback bool) bool {
	if v, ok := e.Data[key].(bool); ok {
		return v
	}
	return fallback
}

// LogSummary aggregates counts and time range over one window of entries.
type LogSummary struct {
	TotalEntries       int            `json:"total_entries"`
	EntriesByType      map[string]int `json:"entries_by_type"`
	EntriesByComponent map[string]int `json:"entries_by_component"`
	ErrorCount         int            `json:"error_count"`
	TimeRangeStart     *time.Time     `json:"time_range_start,omitempty"`
	TimeRangeEnd       *time.Time     `json:"time_range_end,omitempty"`
	DurationSeconds    float64        `json:"duration_seconds"`
}
