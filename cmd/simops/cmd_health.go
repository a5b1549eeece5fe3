package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wowsimlabs/simops/internal/advice"
	"github.com/wowsimlabs/simops/internal/detect"
	"github.com/wowsimlabs/simops/internal/faultctl"
	"github.com/wowsimlabs/simops/internal/models"
	"github.com/wowsimlabs/simops/internal/probe"
	"github.com/wowsimlabs/simops/internal/report"
	"github.com/wowsimlabs/simops/internal/telemetry"
)

// newReportBuilder assembles the health report pipeline from config plus
// flag overrides. With includeFaults false the control channel is never
// dialled and reports carry no active faults.
func newReportBuilder(logFile, host string, gamePort, controlPort int, includeFaults bool) (*report.Builder, error) {
	if logFile == "" {
		return nil, fmt.Errorf("a telemetry log file is required (--log-file or telemetry.logFile in config)")
	}

	source := telemetry.NewFileSource(logFile, cfg.Telemetry.MaxLines)
	detector := detect.New(detect.Config{
		TickWarnMs:          cfg.Thresholds.TickWarnMs,
		TickCritMs:          cfg.Thresholds.TickCritMs,
		ErrorBurstThreshold: cfg.Thresholds.ErrorBurstThreshold,
		ErrorBurstWindow:    cfg.Thresholds.ErrorBurstWindow.Std(),
	})

	var lister report.FaultLister
	if includeFaults {
		client, err := faultctl.NewClient(faultctl.Config{Host: host, Port: controlPort})
		if err != nil {
			return nil, err
		}
		lister = client
	}

	bcfg := report.Config{GameHost: host, GamePort: gamePort}
	return report.NewBuilder(logger, source, probe.TCP{}, lister, detector, bcfg), nil
}

func runHealth(cmd *cobra.Command, args []string) error {
	if healthFormat != "text" && healthFormat != "json" {
		return fmt.Errorf("invalid format %q: must be text or json", healthFormat)
	}

	logFile := flagStr(cmd, "log-file", cfg.Telemetry.LogFile)
	host := flagStr(cmd, "host", cfg.Server.GameHost)
	gamePort := flagInt(cmd, "port", cfg.Server.GamePort)
	controlPort := flagInt(cmd, "control-port", cfg.Server.ControlPort)

	builder, err := newReportBuilder(logFile, host, gamePort, controlPort, !healthNoFaults)
	if err != nil {
		return err
	}

	var adviser *advice.Engine
	if healthAdvice {
		adviser, err = advice.NewEngine(cfg.Advice.Path, logger)
		if err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	for {
		rep, err := builder.Build(ctx)
		if err != nil {
			return err
		}
		if err := printHealthReport(rep, adviser); err != nil {
			return err
		}
		if !healthWatch {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(healthInterval) * time.Second):
		}
		clearScreen()
	}
}

func printHealthReport(rep models.HealthReport, adviser *advice.Engine) error {
	var tips []string
	if healthAdvice {
		if adviser != nil {
			tips = adviser.Advise(rep)
		} else {
			tips = advice.DefaultAdvice(rep)
		}
	}

	if healthFormat == "json" {
		if !healthAdvice {
			return printJSON(rep)
		}
		return printJSON(struct {
			models.HealthReport
			Advice []string `json:"advice,omitempty"`
		}{rep, tips})
	}

	attrib := report.AttributeFaults(rep.ActiveFaults, rep.Anomalies)
	fmt.Println(renderHealthText(rep, attrib, tips))
	return nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func clearScreen() {
	fmt.Print("\033[H\033[2J")
}
