package cmd

import (
	"github.com/spf13/cobra"

	"github.com/codelinehq/codeline/core"
	"github.com/codelinehq/codeline/internal/contract"
)

// chartCmd renders both analyses as an HTML dashboard.
var chartCmd = &cobra.Command{
	Use:   "chart [repo-path]",
	Short: "Render affinity and timeline results as an HTML dashboard.",
	Long: `Run the affinity and timeline analyses and render them as a single
self-contained HTML page with interactive charts.

The page contains:
- A bar chart of the strongest co-change file pairs
- A bar chart of files ranked by total affinity mass
- A Gantt-style chart of commit chains stacked into slots

Examples:
  # Write the default codeline.html
  codeline chart

  # Custom destination and a wider window
  codeline chart --chart-file report.html --lookback 1y`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteChart(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run chart analysis", err)
		}
	},
}
