package pipeline

import (
	"fmt"
	"strings"

	"github.com/wowsimlabs/simops/internal/models"
)

// FormatStageResult renders one stage as a single line:
// [PASS/FAIL] stage (duration) — message.
func FormatStageResult(res models.StageResult) string {
	tag := "FAIL"
	if res.Passed {
		tag = "PASS"
	}
	return fmt.Sprintf("[%s] %-10s (%.2fs) — %s", tag, res.Stage, res.DurationSeconds, res.Message)
}

// FormatPipelineResult renders the multi-line run report with header,
// stages, and outcome. No trailing newline.
func FormatPipelineResult(res models.PipelineResult) string {
	lines := []string{
		"=== Hotfix Pipeline Report ===",
		fmt.Sprintf("Version: %s", res.Config.Version),
		fmt.Sprintf("Fault:   %s", res.Config.FaultID),
		fmt.Sprintf("Action:  %s", res.Config.Action),
		"",
		"Stages:",
	}
	for _, stage := range res.Stages {
		lines = append(lines, "  "+FormatStageResult(stage))
	}
	lines = append(lines,
		"",
		fmt.Sprintf("Outcome: %s", strings.ToUpper(string(res.Outcome))),
		fmt.Sprintf("Total:   %.2fs", res.TotalDurationSeconds),
	)
	return strings.Join(lines, "\n")
}
