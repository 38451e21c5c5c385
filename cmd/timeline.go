package cmd

import (
	"github.com/spf13/cobra"

	"github.com/codelinehq/codeline/core"
	"github.com/codelinehq/codeline/internal/contract"
)

// timelineCmd performs chain timeline analysis.
var timelineCmd = &cobra.Command{
	Use:   "timeline [repo-path]",
	Short: "Show linear commit chains stacked into display slots.",
	Long: `Extract linear chains from the commit graph and lay them out on a timeline.

A chain is a maximal run of commits connected by single-parent links. Chains
are clamped to the analysis window and packed greedily into the lowest free
slot, so parallel lines of development land in separate lanes.

Use this to:
- Visualize how many parallel efforts were active at once
- Spot long-running branches and where they forked off
- See which chains were cut off by the analysis window

Examples:
  # Chains in the last six months
  codeline timeline

  # Narrow window with JSON output
  codeline timeline --start 2024-01-01 --end 2024-03-01 --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTimeline(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run timeline analysis", err)
		}
	},
}
