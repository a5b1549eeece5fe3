package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wowsimlabs/simops/internal/models"
)

// renderHealthText lays out one report top-down: overall status first,
// then the tick loop, zones, players, anomalies, faults, and whatever
// attribution and advice the caller computed.
func renderHealthText(rep models.HealthReport, attrib []models.FaultAttribution, tips []string) string {
	var b strings.Builder

	b.WriteString("=== WoW Server Health Report ===\n")
	fmt.Fprintf(&b, "Status:  %s\n", strings.ToUpper(string(rep.Status)))
	if rep.ServerReachable {
		b.WriteString("Server:  reachable\n")
	} else {
		b.WriteString("Server:  unreachable\n")
	}

	if rep.Tick != nil {
		t := rep.Tick
		fmt.Fprintf(&b, "Tick Rate: %d ticks, avg %.1fms (min %.1f / max %.1f), overruns %d (%.1f%%)\n",
			t.TotalTicks, t.AvgDurationMs, t.MinDurationMs, t.MaxDurationMs, t.OverrunCount, t.OverrunPct)
	} else {
		b.WriteString("Tick Rate: no tick data in window\n")
	}

	if len(rep.Zones) > 0 {
		b.WriteString("Zones:\n")
		for _, z := range rep.Zones {
			fmt.Fprintf(&b, "  zone %-3d %-8s ticks %-5d errors %-3d avg %.1fms\n",
				z.ZoneID, z.State, z.TickCount, z.ErrorCount, z.AvgTickDurationMs)
		}
	}

	fmt.Fprintf(&b, "Connected Players: %d\n", rep.ConnectedPlayers)
	if rep.Game != nil {
		fmt.Fprintf(&b, "Gameplay: %d casts (%.1f%% success), %.1f DPS overall\n",
			rep.Game.Casts.CastsStarted, 100*rep.Game.Casts.CastSuccessRate, rep.Game.Combat.OverallDPS)
	}

	if len(rep.Anomalies) == 0 {
		b.WriteString("Anomalies: none\n")
	} else {
		fmt.Fprintf(&b, "Anomalies: %d\n", len(rep.Anomalies))
		for _, a := range rep.Anomalies {
			fmt.Fprintf(&b, "  [%s] %s: %s\n", a.Severity, a.Category, a.Message)
		}
	}

	if len(rep.ActiveFaults) > 0 {
		b.WriteString("Active Faults:\n")
		for _, f := range rep.ActiveFaults {
			fmt.Fprintf(&b, "  %s (mode %s, activations %d)\n", f.ID, f.Mode, f.Activations)
		}
	}

	if len(attrib) > 0 {
		b.WriteString("Suspected Causes:\n")
		for _, fa := range attrib {
			fmt.Fprintf(&b, "  %s (score %.2f)\n", fa.FaultID, fa.Score)
			for _, note := range fa.Notes {
				fmt.Fprintf(&b, "    - %s\n", note)
			}
		}
	}

	if len(tips) > 0 {
		b.WriteString("Advice:\n")
		for _, tip := range tips {
			fmt.Fprintf(&b, "  - %s\n", tip)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderFaultInfo(f models.FaultInfo) string {
	state := "inactive"
	if f.Active {
		state = "active"
	}
	return fmt.Sprintf("%s: %s (mode %s, activations %d)", f.ID, state, f.Mode, f.Activations)
}

func renderFaultList(faults []models.FaultInfo) string {
	lines := make([]string, 0, len(faults))
	for _, f := range faults {
		lines = append(lines, renderFaultInfo(f))
	}
	return strings.Join(lines, "\n")
}

func renderSummary(s models.LogSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total entries: %d\n", s.TotalEntries)
	fmt.Fprintf(&b, "Errors: %d\n", s.ErrorCount)
	if s.TimeRangeStart != nil && s.TimeRangeEnd != nil {
		fmt.Fprintf(&b, "Time range: %s .. %s (%.1fs)\n",
			s.TimeRangeStart.Format(time.RFC3339), s.TimeRangeEnd.Format(time.RFC3339), s.DurationSeconds)
	}
	if len(s.EntriesByType) > 0 {
		b.WriteString("By type:\n")
		for _, k := range sortedKeys(s.EntriesByType) {
			fmt.Fprintf(&b, "  %-22s %d\n", k, s.EntriesByType[k])
		}
	}
	if len(s.EntriesByComponent) > 0 {
		b.WriteString("By component:\n")
		for _, k := range sortedKeys(s.EntriesByComponent) {
			fmt.Fprintf(&b, "  %-22s %d\n", k, s.EntriesByComponent[k])
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderAnomalies(anomalies []models.Anomaly) string {
	if len(anomalies) == 0 {
		return "No anomalies detected"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Anomalies detected: %d\n", len(anomalies))
	for _, a := range anomalies {
		fmt.Fprintf(&b, "  [%s] %s: %s\n", a.Severity, a.Category, a.Message)
	}
	return strings.TrimRight(b.String(), "\n")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
