package taskrunner

import (
	"fmt"
	"strings"
	"time"
)

// RenderSummaryLine returns the summary line printed after runs executing more
// than one task.
func RenderSummaryLine(outcome Outcome) string {
	taskCount := len(outcome.Results)
	if taskCount <= 1 {
		return ""
	}

	parts := []string{
		fmt.Sprintf("Summary: tasks=%d", taskCount),
		fmt.Sprintf("failed=%d", outcome.Failed()),
	}

	if len(outcome.Requested) > 0 {
		parts = append(parts, fmt.Sprintf("requested=%s", strings.Join(outcome.Requested, ",")))
	}

	durationHuman := outcome.Duration.Round(time.Millisecond).String()
	if outcome.Duration <= 0 {
		durationHuman = "0s"
	}

	parts = append(parts, fmt.Sprintf("duration_human=%s", durationHuman))
	parts = append(parts, fmt.Sprintf("duration_ms=%d", outcome.Duration.Milliseconds()))

	return strings.Join(parts, " ")
}
