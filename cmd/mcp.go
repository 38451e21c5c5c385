package cmd

import (
	"github.com/spf13/cobra"

	"github.com/codelinehq/codeline/internal/iocache"
	"github.com/codelinehq/codeline/internal/mcp"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Codeline MCP server",
	Long:  `Launch an MCP server that allows AI agents to run affinity and timeline analysis via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// The protocol runs over stdio, so setup must not write to stdout.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, iocache.Manager)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
