package main

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/wowsimlabs/simops/internal/config"
	"github.com/wowsimlabs/simops/internal/utils"
)

// --- Global Command Variables ---
var (
	cfgPath string
	cfg     *config.Config
	logger  *slog.Logger

	healthLogFile  string
	healthHost     string
	healthPort     int
	healthCtlPort  int
	healthFormat   string
	healthNoFaults bool
	healthAdvice   bool
	healthWatch    bool
	healthInterval int

	faultHost       string
	faultPort       int
	faultDelayMs    int
	faultMegabytes  int
	faultMultiplier int
	faultDuration   string
	faultZone       int

	pipeVersion    string
	pipeFault      string
	pipeAction     string
	pipeDelayMs    int
	pipeMegabytes  int
	pipeMultiplier int
	pipeDuration   string
	pipeZone       int
	pipeCanaryDur  time.Duration
	pipePollEvery  time.Duration
	pipeRollbackOn string
	pipeLogFile    string
	pipeFormat     string
	pipeHost       string
	pipeGamePort   int
	pipeCtlPort    int

	logsType      string
	logsComponent string
	logsMessage   string
	logsAnomalies bool
	logsFormat    string

	monListen   string
	monInterval time.Duration
	monLogFile  string
	monHost     string
	monGamePort int
	monCtlPort  int
	monNoFaults bool

	rootCmd = &cobra.Command{
		Use:   "simops",
		Short: "Reliability tooling for the WoW server simulator",
		Long: `simops grades server health from JSONL telemetry, drives fault
injection over the control channel, and runs canary-gated hotfix
deployments against a live server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(cfgPath)
			if err != nil {
				return err
			}
			logger = utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
			slog.SetDefault(logger)
			return nil
		},
	}

	// --- Health ---
	healthCmd = &cobra.Command{
		Use:   "health",
		Short: "Build and print a health report for the running server",
		Args:  cobra.NoArgs,
		RunE:  runHealth, // Defined in cmd_health.go
	}

	// --- Fault Injection ---
	faultCmd = &cobra.Command{
		Use:     "fault",
		Aliases: []string{"inject-fault"},
		Short:   "Inject fault scenarios into the running server",
	}
	faultActivateCmd = &cobra.Command{
		Use:   "activate <fault-id>",
		Short: "Activate a fault by ID (e.g. latency-spike, session-crash)",
		Args:  cobra.ExactArgs(1),
		RunE:  runFaultActivate, // Defined in cmd_fault.go
	}
	faultDeactivateCmd = &cobra.Command{
		Use:   "deactivate <fault-id>",
		Short: "Deactivate a specific fault by ID",
		Args:  cobra.ExactArgs(1),
		RunE:  runFaultDeactivate, // Defined in cmd_fault.go
	}
	faultDeactivateAllCmd = &cobra.Command{
		Use:   "deactivate-all",
		Short: "Deactivate all active faults",
		Args:  cobra.NoArgs,
		RunE:  runFaultDeactivateAll, // Defined in cmd_fault.go
	}
	faultStatusCmd = &cobra.Command{
		Use:   "status <fault-id>",
		Short: "Show status of a specific fault",
		Args:  cobra.ExactArgs(1),
		RunE:  runFaultStatus, // Defined in cmd_fault.go
	}
	faultListCmd = &cobra.Command{
		Use:   "list",
		Short: "List all registered faults and their status",
		Args:  cobra.NoArgs,
		RunE:  runFaultList, // Defined in cmd_fault.go
	}

	// --- Deployment Pipeline ---
	pipelineCmd = &cobra.Command{
		Use:   "pipeline",
		Short: "Canary-gated hotfix deployments",
	}
	pipelineRunCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the build, validate, canary, promote pipeline for one hotfix",
		Args:  cobra.NoArgs,
		RunE:  runPipeline, // Defined in cmd_pipeline.go
	}

	// --- Telemetry Logs ---
	logsCmd = &cobra.Command{
		Use:   "logs",
		Short: "Parse and analyze server telemetry logs",
	}
	logsParseCmd = &cobra.Command{
		Use:   "parse <file|->",
		Short: "Parse a JSONL telemetry log and summarise it (use - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE:  runLogsParse, // Defined in cmd_logs.go
	}

	// --- Continuous Monitor ---
	monitorCmd = &cobra.Command{
		Use:   "monitor",
		Short: "Continuously evaluate health and serve it over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runMonitor, // Defined in cmd_monitor.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to a simops config file (default: $SIMOPS_CONFIG)")

	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().StringVar(&healthLogFile, "log-file", "", "Path to JSONL telemetry log file")
	healthCmd.Flags().StringVar(&healthHost, "host", "localhost", "Game server host")
	healthCmd.Flags().IntVar(&healthPort, "port", 8080, "Game server port")
	healthCmd.Flags().IntVar(&healthCtlPort, "control-port", 8081, "Control channel port")
	healthCmd.Flags().StringVar(&healthFormat, "format", "text", "Output format: text or json")
	healthCmd.Flags().BoolVar(&healthNoFaults, "no-faults", false, "Skip control channel fault query")
	healthCmd.Flags().BoolVar(&healthAdvice, "advice", false, "Append remediation advice to the report")
	healthCmd.Flags().BoolVar(&healthWatch, "watch", false, "Continuous monitoring mode")
	healthCmd.Flags().IntVar(&healthInterval, "interval", 2, "Watch refresh interval (seconds)")

	rootCmd.AddCommand(faultCmd)
	faultCmd.PersistentFlags().StringVar(&faultHost, "host", "localhost", "Control channel host")
	faultCmd.PersistentFlags().IntVar(&faultPort, "port", 8081, "Control channel port")
	faultCmd.AddCommand(faultActivateCmd)
	faultActivateCmd.Flags().IntVar(&faultDelayMs, "delay-ms", 0, "Latency spike delay (ms)")
	faultActivateCmd.Flags().IntVar(&faultMegabytes, "megabytes", 0, "Memory pressure size (MB)")
	faultActivateCmd.Flags().IntVar(&faultMultiplier, "multiplier", 0, "Event flood multiplier")
	faultActivateCmd.Flags().StringVar(&faultDuration, "duration", "", "Duration: e.g. '5s' or '100t'")
	faultActivateCmd.Flags().IntVar(&faultZone, "zone", 0, "Target zone (0=all)")
	faultCmd.AddCommand(faultDeactivateCmd)
	faultCmd.AddCommand(faultDeactivateAllCmd)
	faultCmd.AddCommand(faultStatusCmd)
	faultCmd.AddCommand(faultListCmd)

	rootCmd.AddCommand(pipelineCmd)
	pipelineCmd.AddCommand(pipelineRunCmd)
	pipelineRunCmd.Flags().StringVar(&pipeFault, "fault", "", "Fault the hotfix targets (required)")
	pipelineRunCmd.Flags().StringVar(&pipeAction, "action", "activate", "Deploy action: activate or deactivate")
	pipelineRunCmd.Flags().StringVar(&pipeVersion, "version", "1.0.0", "Hotfix version label")
	pipelineRunCmd.Flags().IntVar(&pipeDelayMs, "delay-ms", 0, "Latency spike delay (ms)")
	pipelineRunCmd.Flags().IntVar(&pipeMegabytes, "megabytes", 0, "Memory pressure size (MB)")
	pipelineRunCmd.Flags().IntVar(&pipeMultiplier, "multiplier", 0, "Event flood multiplier")
	pipelineRunCmd.Flags().StringVar(&pipeDuration, "duration", "", "Fault duration: e.g. '5s' or '100t'")
	pipelineRunCmd.Flags().IntVar(&pipeZone, "zone", 0, "Target zone (0=all)")
	pipelineRunCmd.Flags().DurationVar(&pipeCanaryDur, "canary-duration", 10*time.Second, "How long the canary watches health")
	pipelineRunCmd.Flags().DurationVar(&pipePollEvery, "poll-interval", 2*time.Second, "Delay between canary health samples")
	pipelineRunCmd.Flags().StringVar(&pipeRollbackOn, "rollback-on", "critical", "Status that triggers rollback: degraded or critical")
	pipelineRunCmd.Flags().StringVar(&pipeLogFile, "log-file", "", "Path to JSONL telemetry log file")
	pipelineRunCmd.Flags().StringVar(&pipeFormat, "format", "text", "Output format: text or json")
	pipelineRunCmd.Flags().StringVar(&pipeHost, "host", "localhost", "Game server host")
	pipelineRunCmd.Flags().IntVar(&pipeGamePort, "port", 8080, "Game server port")
	pipelineRunCmd.Flags().IntVar(&pipeCtlPort, "control-port", 8081, "Control channel port")
	_ = pipelineRunCmd.MarkFlagRequired("fault")

	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(logsParseCmd)
	logsParseCmd.Flags().StringVar(&logsType, "type", "", "Filter by entry type")
	logsParseCmd.Flags().StringVar(&logsComponent, "component", "", "Filter by component")
	logsParseCmd.Flags().StringVar(&logsMessage, "message", "", "Filter by message substring")
	logsParseCmd.Flags().BoolVar(&logsAnomalies, "anomalies", false, "Show detected anomalies only")
	logsParseCmd.Flags().StringVar(&logsFormat, "format", "text", "Output format: text or json")

	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().StringVar(&monListen, "listen", ":9100", "HTTP listen address for reports and metrics")
	monitorCmd.Flags().DurationVar(&monInterval, "interval", 2*time.Second, "Delay between health evaluations")
	monitorCmd.Flags().StringVar(&monLogFile, "log-file", "", "Path to JSONL telemetry log file")
	monitorCmd.Flags().StringVar(&monHost, "host", "localhost", "Game server host")
	monitorCmd.Flags().IntVar(&monGamePort, "port", 8080, "Game server port")
	monitorCmd.Flags().IntVar(&monCtlPort, "control-port", 8081, "Control channel port")
	monitorCmd.Flags().BoolVar(&monNoFaults, "no-faults", false, "Skip control channel fault query")
}

// flagStr returns the flag's value when the user set it explicitly,
// the config-derived fallback otherwise.
func flagStr(cmd *cobra.Command, name, fallback string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return fallback
}

func flagInt(cmd *cobra.Command, name string, fallback int) int {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetInt(name)
		return v
	}
	return fallback
}

func flagDur(cmd *cobra.Command, name string, fallback time.Duration) time.Duration {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetDuration(name)
		return v
	}
	return fallback
}
