package detect

import (
	"fmt"
	"maps"

	"github.com/wowsimlabs/simops/internal/models"
)

// DisconnectRule flags client disconnect events from the game server.
// Every disconnect in the window is a warning; whether a wave of them is
// serious is the evaluator's call, not this rule's.
type DisconnectRule struct{}

func NewDisconnectRule() *DisconnectRule {
	return &DisconnectRule{}
}

func (r *DisconnectRule) Detect(entries []models.TelemetryEntry) []models.Anomaly {
	var anomalies []models.Anomaly
	for _, e := range entries {
		if e.Type != models.EntryTypeEvent || e.Component != models.ComponentGameServer || e.Message != models.MsgClientDisconnected {
			continue
		}
		session := dataLabel(e.Data, "session_id", "unknown")
		anomalies = append(anomalies, models.Anomaly{
			Category:  models.CategoryUnexpectedDisconnect,
			Severity:  models.AnomalyWarning,
			Timestamp: e.Timestamp,
			Message:   fmt.Sprintf("Client session %s disconnected unexpectedly", session),
			Details:   maps.Clone(e.Data),
		})
	}
	return anomalies
}
