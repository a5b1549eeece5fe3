package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/wowsimlabs/simops/internal/detect"
	"github.com/wowsimlabs/simops/internal/models"
	"github.com/wowsimlabs/simops/internal/telemetry"
)

func runLogsParse(cmd *cobra.Command, args []string) error {
	if logsFormat != "text" && logsFormat != "json" {
		return fmt.Errorf("invalid format %q: must be text or json", logsFormat)
	}

	file := args[0]
	var entries []models.TelemetryEntry
	var err error
	if file == "-" {
		entries, err = telemetry.ParseReader(os.Stdin)
	} else {
		var f *os.File
		f, err = os.Open(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("file not found: %s", file)
			}
			return err
		}
		defer f.Close()
		entries, err = telemetry.ParseReader(f)
	}
	if err != nil {
		return err
	}

	filter := telemetry.Filter{
		Type:            models.EntryType(logsType),
		Component:       logsComponent,
		MessageContains: logsMessage,
	}
	entries = filter.Apply(entries)

	detector := detect.New(detect.Config{
		TickWarnMs:          cfg.Thresholds.TickWarnMs,
		TickCritMs:          cfg.Thresholds.TickCritMs,
		ErrorBurstThreshold: cfg.Thresholds.ErrorBurstThreshold,
		ErrorBurstWindow:    cfg.Thresholds.ErrorBurstWindow.Std(),
	})
	detected := detector.Detect(entries)
	summary := telemetry.Summarize(entries)

	if logsFormat == "json" {
		return printJSON(struct {
			Entries   []models.TelemetryEntry `json:"entries"`
			Summary   models.LogSummary       `json:"summary"`
			Anomalies []models.Anomaly        `json:"anomalies"`
		}{entries, summary, detected})
	}

	if logsAnomalies {
		fmt.Println(renderAnomalies(detected))
		return nil
	}

	fmt.Println(renderSummary(summary))
	if len(detected) > 0 {
		fmt.Println()
		fmt.Println(renderAnomalies(detected))
	}
	return nil
}
