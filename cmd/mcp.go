package cmd

import (
	"github.com/huangsam/sqlscope/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:     "mcp",
	Short:   "Start the SQLScope MCP server",
	Long:    `Launch an MCP server on stdio that allows AI agents to score, compare and batch-analyze SQL via standard tools.`,
	PreRunE: inlineSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
