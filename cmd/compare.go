package cmd

import (
	"github.com/huangsam/sqlscope/core"
	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/spf13/cobra"
)

// compareCmd compares two SQL texts.
var compareCmd = &cobra.Command{
	Use:   "compare <sql-a|@file|-> <sql-b|@file|->",
	Short: "Compare two SQL queries for similarity and clause differences.",
	Long: `Compare an original query with its migrated or candidate version.

Reports whether the two are identical after normalization, how similar they are,
a 0-100 compatibility score with a migration quality label, and the tokens that were
added or removed in the SELECT, FROM and WHERE clauses.

Each argument is SQL text, @path to read SQL from a file, or - to read stdin.

Examples:
  # Compare inline SQL
  sqlscope compare "SELECT id FROM orders" "select id from orders o"

  # Compare two files
  sqlscope compare @legacy/orders.sql @migrated/orders.sql

  # Machine-readable output
  sqlscope compare @a.sql @b.sql --output json`,
	Args:    cobra.ExactArgs(2),
	PreRunE: inlineSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		sqlA, err := contract.ResolveSQLArg(args[0])
		if err != nil {
			contract.LogFatal("Cannot read first query", err)
		}
		sqlB, err := contract.ResolveSQLArg(args[1])
		if err != nil {
			contract.LogFatal("Cannot read second query", err)
		}
		if err := core.ExecuteCompare(rootCtx, cfg, sqlA, sqlB); err != nil {
			contract.LogFatal("Cannot compare queries", err)
		}
	},
}
