package cmd

import (
	"github.com/huangsam/sqlscope/core"
	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/spf13/cobra"
)

// checkCmd focused on CI/CD policy enforcement.
var checkCmd = &cobra.Command{
	Use:   "check <inventory-file>",
	Short: "Enforce complexity and duplication limits for CI/CD pipelines (fails build on violations)",
	Long: `Analyze a report inventory and enforce migration readiness policies.

Designed for CI/CD integration - exits with a non-zero code when any report scores
above --max-score or when duplicates exceed --max-duplicate-ratio of all reports.
A limit of 0 disables that policy.

Use cases:
- Block new reports that are too complex to migrate
- Keep the duplicate share of an inventory under control
- Track readiness of a migration wave

Examples:
  # Fail when any report scores above 30
  sqlscope check reports.csv --max-score 30

  # Fail when more than 20% of reports are duplicates
  sqlscope check reports.csv --max-duplicate-ratio 0.2`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCheck(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Policy check failed", err)
		}
	},
}
