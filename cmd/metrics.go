package cmd

import (
	"github.com/huangsam/skymetrics/core"
	"github.com/huangsam/skymetrics/internal/contract"
	"github.com/spf13/cobra"
)

// metricsCmd displays the configured metric set.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display the configured metric set with required columns",
	Long: `Show the metric set a run would evaluate, including the visit columns
each metric reads and the bad value it reports for undefined slices.

No database access is performed - this is purely informational.

Use this to:
- See how flags and config values change metric parameters
- Check which visit columns a run will query
- Document the metric set for a survey evaluation

Examples:
  # Show the default metric set
  skymetrics metrics

  # View with custom thresholds from config file
  skymetrics metrics --config .skymetrics.yaml`,
	PreRunE: metricsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMetricList(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot display metrics", err)
		}
	},
}

// metricsSetup runs the shared validation without requiring a visit database.
func metricsSetup(cmd *cobra.Command, args []string) error {
	if err := sharedSetup(cmd, args); err != nil {
		// Listing needs no database; fill a placeholder and retry
		if input.DBConnect == "" {
			input.DBConnect = ":memory:"
			return contract.ProcessAndValidate(cfg, input)
		}
		return err
	}
	return nil
}
