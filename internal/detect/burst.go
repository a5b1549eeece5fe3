package detect

import (
	"fmt"
	"time"

	"github.com/wowsimlabs/simops/internal/models"
)

// BurstRule looks for clusters of error entries inside a sliding time
// window. It reports at most one anomaly per invocation so that a long
// burst does not flood every subsequent report with near-duplicates.
type BurstRule struct {
	Threshold int
	Window    time.Duration
}

// NewBurstRule builds the rule, substituting defaults for non-positive
// parameters.
func NewBurstRule(threshold int, window time.Duration) *BurstRule {
	if threshold <= 0 {
		threshold = DefaultErrorBurstThreshold
	}
	if window <= 0 {
		window = DefaultErrorBurstWindow
	}
	return &BurstRule{Threshold: threshold, Window: window}
}

// Detect collects all error entries regardless of component, then slides
// a forward window from each one in input order. Entries are assumed to
// be in chronological order; the window is inclusive at both ends. The
// first window reaching the threshold wins and its anomaly carries the
// full window population, not just the threshold count.
func (r *BurstRule) Detect(entries []models.TelemetryEntry) []models.Anomaly {
	var errs []models.TelemetryEntry
	for _, e := range entries {
		if e.Type == models.EntryTypeError {
			errs = append(errs, e)
		}
	}
	if len(errs) < r.Threshold {
		return nil
	}

	for i, first := range errs {
		count := 0
		for _, e := range errs[i:] {
			if e.Timestamp.Sub(first.Timestamp) > r.Window {
				break
			}
			count++
		}
		if count >= r.Threshold {
			return []models.Anomaly{{
				Category:  models.CategoryErrorBurst,
				Severity:  models.AnomalyCritical,
				Timestamp: first.Timestamp,
				Message:   fmt.Sprintf("%d errors within %gs (threshold: %d)", count, r.Window.Seconds(), r.Threshold),
				Details:   map[string]any{"error_count": count, "window_sec": r.Window.Seconds()},
			}}
		}
	}
	return nil
}
