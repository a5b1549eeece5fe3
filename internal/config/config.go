package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wowsimlabs/simops/internal/models"
)

// Duration wraps time.Duration so yaml values can be written as Go
// duration strings ("10s", "500ms").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// Config captures the settings shared by every simops command.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Server     ServerConfig     `yaml:"server"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Canary     CanaryConfig     `yaml:"canary"`
	Monitor    MonitorConfig    `yaml:"monitor"`
	Advice     AdviceConfig     `yaml:"advice"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// ServerConfig locates the game server's probe and control endpoints.
type ServerConfig struct {
	GameHost    string `yaml:"gameHost"`
	GamePort    int    `yaml:"gamePort"`
	ControlPort int    `yaml:"controlPort"`
}

// TelemetryConfig points at the JSONL telemetry stream.
type TelemetryConfig struct {
	LogFile  string `yaml:"logFile"`
	MaxLines int    `yaml:"maxLines"`
}

// ThresholdsConfig tunes the anomaly detector.
type ThresholdsConfig struct {
	TickWarnMs          float64  `yaml:"tickWarnMs"`
	TickCritMs          float64  `yaml:"tickCritMs"`
	ErrorBurstThreshold int      `yaml:"errorBurstThreshold"`
	ErrorBurstWindow    Duration `yaml:"errorBurstWindow"`
}

// CanaryConfig supplies defaults for pipeline runs.
type CanaryConfig struct {
	Duration     Duration            `yaml:"duration"`
	PollInterval Duration            `yaml:"pollInterval"`
	RollbackOn   models.HealthStatus `yaml:"rollbackOn"`
}

// MonitorConfig controls the continuous evaluation loop.
type MonitorConfig struct {
	Interval   Duration `yaml:"interval"`
	ListenAddr string   `yaml:"listenAddr"`
}

// AdviceConfig controls rule-pack loading for the advice engine.
type AdviceConfig struct {
	Path string `yaml:"path"`
}

// Load initialises Config from a YAML file and optional environment
// overrides, then validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("SIMOPS_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", JSON: false},
		Server: ServerConfig{
			GameHost:    "localhost",
			GamePort:    8080,
			ControlPort: 8081,
		},
		Telemetry: TelemetryConfig{MaxLines: 2000},
		Thresholds: ThresholdsConfig{
			TickWarnMs:          60,
			TickCritMs:          100,
			ErrorBurstThreshold: 5,
			ErrorBurstWindow:    Duration(10 * time.Second),
		},
		Canary: CanaryConfig{
			Duration:     Duration(10 * time.Second),
			PollInterval: Duration(2 * time.Second),
			RollbackOn:   models.StatusCritical,
		},
		Monitor: MonitorConfig{
			Interval:   Duration(2 * time.Second),
			ListenAddr: ":9100",
		},
		Advice: AdviceConfig{Path: "configs/advice/default.yaml"},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SIMOPS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SIMOPS_LOG_JSON"); v != "" {
		cfg.Logging.JSON = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("SIMOPS_GAME_HOST"); v != "" {
		cfg.Server.GameHost = v
	}
	if v := os.Getenv("SIMOPS_GAME_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.GamePort = port
		}
	}
	if v := os.Getenv("SIMOPS_CONTROL_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.ControlPort = port
		}
	}
	if v := os.Getenv("SIMOPS_LOG_FILE"); v != "" {
		cfg.Telemetry.LogFile = v
	}
	if v := os.Getenv("SIMOPS_MONITOR_LISTEN"); v != "" {
		cfg.Monitor.ListenAddr = v
	}
	if v := os.Getenv("SIMOPS_ADVICE_PATH"); v != "" {
		cfg.Advice.Path = v
	}
}

// Validate rejects configurations that would misbehave at runtime.
func (c *Config) Validate() error {
	if c.Server.GamePort <= 0 || c.Server.GamePort > 65535 {
		return fmt.Errorf("invalid game port %d", c.Server.GamePort)
	}
	if c.Server.ControlPort <= 0 || c.Server.ControlPort > 65535 {
		return fmt.Errorf("invalid control port %d", c.Server.ControlPort)
	}
	if c.Telemetry.MaxLines <= 0 {
		return fmt.Errorf("telemetry maxLines must be positive, got %d", c.Telemetry.MaxLines)
	}
	if c.Thresholds.TickWarnMs <= 0 {
		return fmt.Errorf("tick warn threshold must be positive, got %v", c.Thresholds.TickWarnMs)
	}
	if c.Thresholds.TickCritMs <= c.Thresholds.TickWarnMs {
		return fmt.Errorf("tick crit threshold %v must exceed warn threshold %v",
			c.Thresholds.TickCritMs, c.Thresholds.TickWarnMs)
	}
	if c.Thresholds.ErrorBurstThreshold <= 0 {
		return fmt.Errorf("error burst threshold must be positive, got %d", c.Thresholds.ErrorBurstThreshold)
	}
	if c.Thresholds.ErrorBurstWindow <= 0 {
		return fmt.Errorf("error burst window must be positive, got %v", c.Thresholds.ErrorBurstWindow)
	}
	if c.Canary.Duration <= 0 {
		return fmt.Errorf("canary duration must be positive, got %v", c.Canary.Duration)
	}
	if c.Canary.PollInterval <= 0 {
		return fmt.Errorf("canary poll interval must be positive, got %v", c.Canary.PollInterval)
	}
	if c.Canary.RollbackOn != models.StatusDegraded && c.Canary.RollbackOn != models.StatusCritical {
		return fmt.Errorf("invalid rollback threshold %q: must be degraded or critical", c.Canary.RollbackOn)
	}
	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor interval must be positive, got %v", c.Monitor.Interval)
	}
	if c.Monitor.ListenAddr == "" {
		return fmt.Errorf("monitor listen address is required")
	}
	return nil
}
