package telemetry

import (
	"strings"

	"github.com/wowsimlabs/simops/internal/models"
)

// Filter narrows a window of entries. Zero-valued fields impose no
// constraint; MessageContains matches as a case-insensitive substring.
type Filter struct {
	Type            models.EntryType
	Component       string
	MessageContains string
}

// Apply returns the entries matching every set constraint, preserving
// input order. The result is always a fresh slice.
func (f Filter) Apply(entries []models.TelemetryEntry) []models.TelemetryEntry {
	out := make([]models.TelemetryEntry, 0, len(entries))
	needle := strings.ToLower(f.MessageContains)
	for _, e := range entries {
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		if f.Component != "" && e.Component != f.Component {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(e.Message), needle) {
			continue
		}
		out = append(out, e)
	}
	return out
}
