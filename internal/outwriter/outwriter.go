// Package outwriter has output and writer logic.
package outwriter

import (
	"os"

	"github.com/huangsam/skymetrics/internal/contract"
	"github.com/huangsam/skymetrics/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteRun prints a metric run using the configured output format.
func (ow *OutWriter) WriteRun(output *schema.RunOutput, cfg *contract.Config) error {
	return WriteRunResults(output, cfg)
}

// WriteMetrics prints metric definitions using the configured output format.
func (ow *OutWriter) WriteMetrics(metrics []schema.MetricInfo, cfg *contract.Config) error {
	return WriteMetricDefinitions(metrics, cfg)
}

// getMaxTableMetricWidth calculates the maximum width for metric names in
// table output based on terminal width.
func getMaxTableMetricWidth() int {
	termWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || termWidth <= 0 {
		// Fallback to conservative default if terminal size can't be detected
		termWidth = 80 // Conservative default for narrow terminals and CI
	}

	// Reserve space for the fixed columns with borders and padding:
	// Slice + RA + Dec + Visits + Value + Label
	baseWidth := 55

	available := termWidth - baseWidth
	if available < 15 {
		// Minimum reasonable metric name width
		return 15
	}
	if available > 50 {
		// Maximum width to keep rows compact
		return 50
	}
	return available
}

// truncateName shortens a metric name to maxLen, keeping the leading part.
func truncateName(name string, maxLen int) string {
	if len(name) <= maxLen {
		return name
	}
	if maxLen <= 3 {
		return name[:maxLen]
	}
	return name[:maxLen-3] + "..."
}
