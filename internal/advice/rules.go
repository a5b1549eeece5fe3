// Package advice maps health reports to operator guidance through a
// small YAML rule file, with a built-in fallback when no file is
// configured or nothing matches.
package advice

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wowsimlabs/simops/internal/models"
)

// Engine applies the loaded rules to one report at a time.
type Engine struct {
	rules  []Rule
	logger *slog.Logger
}

// Rule pairs match conditions with the recommendations they unlock.
type Rule struct {
	ID              string    `yaml:"id"`
	Match           RuleMatch `yaml:"match"`
	Recommendations []string  `yaml:"recommendations"`
}

// RuleMatch lists optional conditions; all set conditions must hold.
type RuleMatch struct {
	Status          string   `yaml:"status"`
	Category        string   `yaml:"category"`
	ActiveFault     string   `yaml:"active_fault"`
	MessageContains []string `yaml:"message_contains"`
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// NewEngine loads rules from path. An empty or missing path yields a nil
// engine, which advises nothing; callers fall back to DefaultAdvice.
func NewEngine(path string, logger *slog.Logger) (*Engine, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var cfg ruleFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{rules: cfg.Rules, logger: logger}, nil
}

// Advise returns the deduplicated recommendations of every matching
// rule, in rule-file order. Safe to call on a nil engine.
func (e *Engine) Advise(rep models.HealthReport) []string {
	if e == nil {
		return nil
	}

	matched := make([]string, 0)
	for _, rule := range e.rules {
		if rule.Match.Status != "" && !strings.EqualFold(rule.Match.Status, string(rep.Status)) {
			continue
		}
		if rule.Match.Category != "" && !hasCategory(rule.Match.Category, rep.Anomalies) {
			continue
		}
		if rule.Match.ActiveFault != "" && !hasActiveFault(rule.Match.ActiveFault, rep.ActiveFaults) {
			continue
		}
		if len(rule.Match.MessageContains) > 0 && !anomaliesMention(rule.Match.MessageContains, rep.Anomalies) {
			continue
		}
		matched = appendUnique(matched, rule.Recommendations...)
	}
	return matched
}

// DefaultAdvice is the fallback guidance keyed on status alone.
func DefaultAdvice(rep models.HealthReport) []string {
	switch rep.Status {
	case models.StatusCritical:
		return []string{
			"Cross-check active faults against the anomaly window before restarting anything",
			"Inspect crashed zones and recent error bursts in the server log",
		}
	case models.StatusDegraded:
		return []string{
			"Watch tick durations and gameplay rates for another window before deploying",
		}
	default:
		return nil
	}
}

func hasCategory(category string, anomalies []models.Anomaly) bool {
	for _, a := range anomalies {
		if strings.EqualFold(category, string(a.Category)) {
			return true
		}
	}
	return false
}

func hasActiveFault(faultID string, faults []models.FaultInfo) bool {
	for _, f := range faults {
		if strings.EqualFold(faultID, f.ID) {
			return true
		}
	}
	return false
}

func anomaliesMention(keywords []string, anomalies []models.Anomaly) bool {
	for _, a := range anomalies {
		message := strings.ToLower(a.Message)
		for _, kw := range keywords {
			if kw != "" && strings.Contains(message, strings.ToLower(kw)) {
				return true
			}
		}
	}
	return false
}

func appendUnique(existing []string, additions ...string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, rec := range existing {
		seen[rec] = struct{}{}
	}
	for _, item := range additions {
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		existing = append(existing, item)
		seen[item] = struct{}{}
	}
	return existing
}
