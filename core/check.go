package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/huangsam/sqlscope/schema"
)

// ErrCheckFailed is returned when at least one policy is violated.
var ErrCheckFailed = errors.New("migration readiness check failed")

// ExecuteCheck runs the check command for CI/CD gating.
// It analyzes the input inventory and fails when a report exceeds --max-score
// or the duplicate ratio exceeds --max-duplicate-ratio.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()

	builder := NewCheckResultBuilder(ctx, cfg, mgr)
	if _, err := builder.LoadRecords(); err != nil {
		return err
	}
	if result := builder.GetResult(); result != nil {
		// Early success case
		printCheckResult(result, time.Since(start))
		return nil
	}

	if _, err := builder.RunAnalysis(); err != nil {
		return err
	}
	result := builder.ComputeMetrics().BuildResult().GetResult()
	printCheckResult(result, time.Since(start))

	if !result.Passed {
		violations := len(result.FailedReports)
		if result.DuplicateExceeded {
			violations++
		}
		return fmt.Errorf("%w: %d violation(s) found", ErrCheckFailed, violations)
	}
	return nil
}

// printCheckResult prints the check result in a concise format suitable for CI/CD.
func printCheckResult(result *schema.CheckResult, duration time.Duration) {
	printCheckHeader(result, duration)

	if result.Passed {
		printCheckSuccess(result)
	} else {
		printCheckFailure(result)
	}
}

// printCheckHeader prints the common header information for check results.
func printCheckHeader(result *schema.CheckResult, duration time.Duration) {
	fmt.Println("Migration Readiness Check:")

	labels := []string{"Max score:", "Max duplicate ratio:"}
	values := []any{
		formatLimit(result.ScoreThreshold, "%.1f"),
		formatLimit(result.DuplicateLimit, "%.2f"),
	}

	maxLabelLen := 0
	for _, label := range labels {
		maxLabelLen = max(maxLabelLen, len(label))
	}
	for i, label := range labels {
		fmt.Printf("  %-*s %v\n", maxLabelLen+1, label, values[i])
	}
	fmt.Println()

	fmt.Printf("Checked %d reports in %v\n\n", result.TotalReports, duration)
}

func formatLimit(v float64, format string) string {
	if v <= 0 {
		return "off"
	}
	return fmt.Sprintf(format, v)
}

// printCheckSuccess prints the success case output.
func printCheckSuccess(result *schema.CheckResult) {
	fmt.Printf("✅ All reports passed readiness checks\n\n")
	if result.TotalReports == 0 {
		return
	}
	fmt.Println("Scores observed:")
	name := ""
	if n := len(result.MaxScoreReports); n > 0 {
		name = result.MaxScoreReports[0]
		if n > 1 {
			name += fmt.Sprintf(" (+%d more)", n-1)
		}
	}
	fmt.Printf("  complexity: max=%.1f (%s), avg=%.1f\n", result.MaxScore, name, result.AvgScore)
	fmt.Printf("  duplicates: ratio=%.2f\n", result.DuplicateRatio)
}

// printCheckFailure prints the failure case output.
func printCheckFailure(result *schema.CheckResult) {
	fmt.Printf("❌ Readiness check failed across %d reports\n\n", result.TotalReports)

	if n := len(result.FailedReports); n > 0 {
		fmt.Printf("Complexity (%d violations)\n", n)
		maxToShow := 5
		for i, r := range result.FailedReports {
			if i == maxToShow {
				fmt.Printf("  ... and %d more\n", n-maxToShow)
				break
			}
			fmt.Printf("  - %s (score: %.1f > threshold: %.1f, %s)\n", r.Name, r.Score, r.Threshold, r.Category)
		}
		fmt.Println()
	}

	if result.DuplicateExceeded {
		fmt.Printf("Duplicates: ratio %.2f > limit %.2f\n\n", result.DuplicateRatio, result.DuplicateLimit)
	}
}
