package cmd

import (
	"github.com/huangsam/sqlscope/core"
	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/spf13/cobra"
)

// analyzeCmd performs the batch inventory analysis.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <inventory-file>",
	Short: "Score every report in an inventory and group the duplicates.",
	Long: `Analyze a report inventory (CSV, JSON or Parquet) and summarize its migration effort.

For each report the SQL is tokenized, scored for complexity and fingerprinted.
The batch is then clustered into exact duplicate groups and near-duplicate pairs, helping you:
- Size the migration in estimated hours
- See how reports spread across complexity categories
- Find reports that are copies of one another and need not be migrated twice
- Rank the hardest reports so they can be scheduled early

CSV headers are matched loosely: "Report Name", "report_name" and "name" all work.

Examples:
  # Analyze a CSV export from the BI tool
  sqlscope analyze reports.csv

  # Show score breakdowns, per-report detail and owners
  sqlscope analyze reports.csv --explain --detail --owner

  # Loosen near-duplicate detection
  sqlscope analyze reports.csv --near-threshold 80 --consolidate-at 90

  # Export findings to JSON for tracking
  sqlscope analyze reports.csv --output json --output-file findings.json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAnalyze(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run inventory analysis", err)
		}
	},
}
