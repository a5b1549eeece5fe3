package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wowsimlabs/simops/internal/faultctl"
	"github.com/wowsimlabs/simops/internal/models"
	"github.com/wowsimlabs/simops/internal/pipeline"
)

func pipelineConfigFromFlags(cmd *cobra.Command) (models.PipelineConfig, error) {
	pcfg := models.DefaultPipelineConfig(pipeFault, models.FaultAction(pipeAction))
	pcfg.Version = pipeVersion
	pcfg.GameHost = flagStr(cmd, "host", cfg.Server.GameHost)
	pcfg.GamePort = flagInt(cmd, "port", cfg.Server.GamePort)
	pcfg.ControlHost = pcfg.GameHost
	pcfg.ControlPort = flagInt(cmd, "control-port", cfg.Server.ControlPort)
	pcfg.LogFile = flagStr(cmd, "log-file", cfg.Telemetry.LogFile)
	pcfg.CanaryDurationSeconds = flagDur(cmd, "canary-duration", cfg.Canary.Duration.Std()).Seconds()
	pcfg.CanaryPollIntervalSeconds = flagDur(cmd, "poll-interval", cfg.Canary.PollInterval.Std()).Seconds()
	pcfg.RollbackOn = models.HealthStatus(flagStr(cmd, "rollback-on", string(cfg.Canary.RollbackOn)))
	pcfg.TargetZoneID = pipeZone

	if cmd.Flags().Changed("delay-ms") {
		pcfg.Params["delay_ms"] = pipeDelayMs
	}
	if cmd.Flags().Changed("megabytes") {
		pcfg.Params["megabytes"] = pipeMegabytes
	}
	if cmd.Flags().Changed("multiplier") {
		pcfg.Params["multiplier"] = pipeMultiplier
	}

	if pipeDuration != "" {
		ticks, err := faultctl.ParseTickDuration(pipeDuration)
		if err != nil {
			return models.PipelineConfig{}, err
		}
		pcfg.DurationTicks = ticks
	}
	return pcfg, nil
}

func runPipeline(cmd *cobra.Command, args []string) error {
	if pipeFormat != "text" && pipeFormat != "json" {
		return fmt.Errorf("invalid format %q: must be text or json", pipeFormat)
	}

	pcfg, err := pipelineConfigFromFlags(cmd)
	if err != nil {
		return err
	}

	client, err := faultctl.NewClient(faultctl.Config{Host: pcfg.ControlHost, Port: pcfg.ControlPort})
	if err != nil {
		return err
	}
	builder, err := newReportBuilder(pcfg.LogFile, pcfg.GameHost, pcfg.GamePort, pcfg.ControlPort, true)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(logger, builder, client)
	res := runner.Run(cmd.Context(), pcfg)

	if pipeFormat == "json" {
		if err := printJSON(res); err != nil {
			return err
		}
	} else {
		fmt.Println(pipeline.FormatPipelineResult(res))
	}

	// Exit status mirrors the outcome so scripts can gate on promotion.
	if res.Outcome != models.OutcomePromoted {
		os.Exit(1)
	}
	return nil
}
