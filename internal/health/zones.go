package health

import (
	"sort"

	"github.com/wowsimlabs/simops/internal/models"
)

type zoneAccum struct {
	ticks   int
	totalMs float64
	errors  int
	crashed bool
}

// SummarizeZones rolls up zone-component telemetry into one ZoneHealth
// per zone id seen in the window, ordered by ascending id. A single tick
// exception marks the zone CRASHED no matter how many successful ticks
// it also logged. Zone entries without a zone_id cannot be attributed
// and are skipped.
func SummarizeZones(entries []models.TelemetryEntry) []models.ZoneHealth {
	accum := make(map[int]*zoneAccum)
	get := func(id int) *zoneAccum {
		if a, ok := accum[id]; ok {
			return a
		}
		a := &zoneAccum{}
		accum[id] = a
		return a
	}

	for _, e := range entries {
		if e.Component != models.ComponentZone {
			continue
		}
		id, ok := zoneID(e)
		if !ok {
			continue
		}
		switch {
		case e.Type == models.EntryTypeMetric && e.Message == models.MsgZoneTickCompleted:
			a := get(id)
			a.ticks++
			a.totalMs += e.Float("duration_ms", 0)
		case e.Type == models.EntryTypeError:
			a := get(id)
			a.errors++
			if e.Message == models.MsgZoneTickException {
				a.crashed = true
			}
		}
	}

	zones := make([]models.ZoneHealth, 0, len(accum))
	for id, a := range accum {
		z := models.ZoneHealth{
			ZoneID:     id,
			State:      models.ZoneActive,
			TickCount:  a.ticks,
			ErrorCount: a.errors,
		}
		if a.crashed {
			z.State = models.ZoneCrashed
		}
		if a.ticks > 0 {
			z.AvgTickDurationMs = a.totalMs / float64(a.ticks)
		}
		zones = append(zones, z)
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i].ZoneID < zones[j].ZoneID })
	return zones
}

func zoneID(e models.TelemetryEntry) (int, bool) {
	v, ok := e.Data["zone_id"]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	}
	return 0, false
}
