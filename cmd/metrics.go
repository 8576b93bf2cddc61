package cmd

import (
	"github.com/huangsam/sqlscope/core"
	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/spf13/cobra"
)

// metricsCmd displays the scoring weights and thresholds.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display the scoring weights, categories and similarity thresholds",
	Long: `Show how reports are scored and grouped.

Provides complete transparency into the estimate, including:
- Points per SQL feature (joins, subqueries, window functions, CTEs, ...)
- Line count penalty tiers
- Complexity category bands and hours per point
- Similarity weights and the near-duplicate and consolidation thresholds
- Custom weights if configured via .sqlscope.yaml

No inventory is read - this is purely informational.

Examples:
  # Show default scoring
  sqlscope metrics

  # View with custom weights from config file
  sqlscope metrics --config .sqlscope.yaml`,
	PreRunE: inlineSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMetrics(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot display metrics", err)
		}
	},
}
