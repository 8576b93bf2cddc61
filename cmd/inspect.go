package cmd

import (
	"github.com/huangsam/sqlscope/core"
	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/spf13/cobra"
)

// inspectCmd analyzes a single SQL text.
var inspectCmd = &cobra.Command{
	Use:   "inspect <sql|@file|->",
	Short: "Score one SQL query and list its tables, columns and migration hints.",
	Long: `Inspect a single query before migrating it.

Shows the complexity score, category, estimated hours and risk level, the tables and
columns the query touches, and recommendations for vendor-specific constructs such as
DECODE, NVL, ROWNUM and SYSDATE.

Examples:
  # Inspect inline SQL
  sqlscope inspect "SELECT NVL(amount, 0) FROM payments WHERE ROWNUM < 10"

  # Inspect a file with the score breakdown
  sqlscope inspect @queries/revenue.sql --explain`,
	Args:    cobra.ExactArgs(1),
	PreRunE: inlineSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		sql, err := contract.ResolveSQLArg(args[0])
		if err != nil {
			contract.LogFatal("Cannot read query", err)
		}
		if err := core.ExecuteInspect(rootCtx, cfg, sql); err != nil {
			contract.LogFatal("Cannot inspect query", err)
		}
	},
}
