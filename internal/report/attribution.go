package report

import (
	"fmt"
	"sort"

	"github.com/wowsimlabs/simops/internal/models"
)

// faultSignatures maps each well-known fault to the anomaly categories
// it tends to produce. Faults outside the catalogue simply never get
// attributed.
var faultSignatures = map[string][]models.AnomalyCategory{
	models.FaultLatencySpike:     {models.CategoryLatencySpike},
	models.FaultSlowLeak:         {models.CategoryLatencySpike},
	models.FaultSessionCrash:     {models.CategoryZoneCrash, models.CategoryUnexpectedDisconnect},
	models.FaultCascadingFailure: {models.CategoryZoneCrash, models.CategoryUnexpectedDisconnect},
	models.FaultEventFlood:       {models.CategoryErrorBurst},
	models.FaultSplitBrain:       {models.CategoryErrorBurst},
	models.FaultMemoryPressure:   {models.CategoryLatencySpike, models.CategoryErrorBurst},
}

// AttributeFaults heuristically links active faults to the anomalies in
// the same window. A fault scores when at least one category from its
// signature is present: 0.4 for any overlap plus 0.6 weighted by how
// much of the signature matched. Results come back highest score first,
// fault id breaking ties. This is a hint for operators, not a verdict:
// two faults with overlapping signatures both score.
func AttributeFaults(active []models.FaultInfo, anomalies []models.Anomaly) []models.FaultAttribution {
	if len(active) == 0 || len(anomalies) == 0 {
		return nil
	}

	present := make(map[models.AnomalyCategory]int)
	for _, a := range anomalies {
		present[a.Category]++
	}

	out := make([]models.FaultAttribution, 0, len(active))
	for _, f := range active {
		sig, ok := faultSignatures[f.ID]
		if !ok {
			continue
		}
		matched := 0
		var notes []string
		for _, cat := range sig {
			n := present[cat]
			if n == 0 {
				continue
			}
			matched++
			notes = append(notes, fmt.Sprintf("%s seen %dx in window", cat, n))
		}
		if matched == 0 {
			continue
		}
		share := float64(matched) / float64(len(sig))
		out = append(out, models.FaultAttribution{
			FaultID: f.ID,
			Score:   clamp(0.4+0.6*share, 0, 1),
			Notes:   notes,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].FaultID < out[j].FaultID
	})
	return out
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
