package telemetry

import (
	"github.com/wowsimlabs/simops/internal/models"
	"github.com/wowsimlabs/simops/internal/utils"
)

// Summarize counts a window of entries by type and component and records
// its time range. An empty window yields zero counts and a nil range.
func Summarize(entries []models.TelemetryEntry) models.LogSummary {
	s := models.LogSummary{
		TotalEntries:       len(entries),
		EntriesByType:      make(map[string]int),
		EntriesByComponent: make(map[string]int),
	}
	if len(entries) == 0 {
		return s
	}

	first, last := entries[0].Timestamp, entries[0].Timestamp
	for _, e := range entries {
		s.EntriesByType[string(e.Type)]++
		s.EntriesByComponent[e.Component]++
		if e.Type == models.EntryTypeError {
			s.ErrorCount++
		}
		if e.Timestamp.Before(first) {
			first = e.Timestamp
		}
		if e.Timestamp.After(last) {
			last = e.Timestamp
		}
	}

	start, end := first, last
	s.TimeRangeStart = &start
	s.TimeRangeEnd = &end
	s.DurationSeconds = utils.SpanSeconds(start, end)
	return s
}
