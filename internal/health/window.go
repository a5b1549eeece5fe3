package health

import (
	"github.com/wowsimlabs/simops/internal/models"
)

// CountConnectedPlayers estimates the live player count as accepts minus
// disconnects within the window, clamped at zero. Sessions opened before
// the window started make the estimate low, never negative.
func CountConnectedPlayers(entries []models.TelemetryEntry) int {
	accepted, disconnected := 0, 0
	for _, e := range entries {
		if e.Type != models.EntryTypeEvent || e.Component != models.ComponentGameServer {
			continue
		}
		switch e.Message {
		case models.MsgConnectionAccepted:
			accepted++
		case models.MsgClientDisconnected:
			disconnected++
		}
	}
	if accepted < disconnected {
		return 0
	}
	return accepted - disconnected
}

// UptimeTicks reports the highest tick counter observed in the window's
// game-loop metrics. The counter is monotonic on the server side, so the
// maximum is the most recent value.
func UptimeTicks(entries []models.TelemetryEntry) uint64 {
	var highest uint64
	for _, e := range entries {
		if e.Type != models.EntryTypeMetric || e.Component != models.ComponentGameLoop || e.Message != models.MsgTickCompleted {
			continue
		}
		if tick := uint64(e.Float("tick", 0)); tick > highest {
			highest = tick
		}
	}
	return highest
}

// CountErrors counts error-type entries across all components.
func CountErrors(entries []models.TelemetryEntry) int {
	n := 0
	for _, e := range entries {
		if e.Type == models.EntryTypeError {
			n++
		}
	}
	return n
}
