package cmd

import (
	"github.com/spf13/cobra"

	"github.com/codelinehq/codeline/core"
	"github.com/codelinehq/codeline/internal/contract"
)

// affinityCmd performs co-change affinity analysis.
var affinityCmd = &cobra.Command{
	Use:   "affinity [repo-path]",
	Short: "Show the file pairs that change together most often.",
	Long: `Mine Git history for files that are repeatedly modified in the same commits.

Each commit contributes 1/(n-1) affinity mass to every pair of its n changed
files, so focused commits weigh more than sweeping ones. The score cutoff is
tuned automatically so the resulting network stays near a target node count.

Use this to:
- Discover hidden coupling between files that live far apart
- Find candidates for refactoring or co-location
- Sanity-check module boundaries against actual change patterns

Examples:
  # Top co-change pairs in the last six months
  codeline affinity

  # Wider window and a denser network
  codeline affinity --lookback 1y --target-nodes 40

  # Export findings to CSV for tracking
  codeline affinity --output csv --output-file affinity.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAffinity(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run affinity analysis", err)
		}
	},
}
