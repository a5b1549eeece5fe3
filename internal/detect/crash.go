package detect

import (
	"fmt"
	"maps"

	"github.com/wowsimlabs/simops/internal/models"
)

// CrashRule surfaces zone tick exceptions as critical anomalies. A zone
// that threw during its tick is out of the simulation until an operator
// intervenes, so there is no warning tier here.
type CrashRule struct{}

func NewCrashRule() *CrashRule {
	return &CrashRule{}
}

// Detect matches error entries from the zone component carrying the tick
// exception message. The anomaly keeps the full entry payload in Details
// so the report preserves zone_name, tick and the raw error text.
func (r *CrashRule) Detect(entries []models.TelemetryEntry) []models.Anomaly {
	var anomalies []models.Anomaly
	for _, e := range entries {
		if e.Type != models.EntryTypeError || e.Component != models.ComponentZone || e.Message != models.MsgZoneTickException {
			continue
		}
		zone := dataLabel(e.Data, "zone_id", "unknown")
		errText := dataLabel(e.Data, "error", "unknown error")
		anomalies = append(anomalies, models.Anomaly{
			Category:  models.CategoryZoneCrash,
			Severity:  models.AnomalyCritical,
			Timestamp: e.Timestamp,
			Message:   fmt.Sprintf("Zone %s crashed: %s", zone, errText),
			Details:   maps.Clone(e.Data),
		})
	}
	return anomalies
}

// dataLabel renders a payload value for message text. JSON numbers decode
// as float64, so %v prints 3.0 as "3".
func dataLabel(data map[string]any, key, fallback string) string {
	v, ok := data[key]
	if !ok || v == nil {
		return fallback
	}
	return fmt.Sprintf("%v", v)
}
