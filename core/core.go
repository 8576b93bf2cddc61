// Package core has core logic for report analysis, comparison and readiness checks.
package core

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/huangsam/sqlscope/internal/ingest"
	"github.com/huangsam/sqlscope/internal/outwriter"
	"github.com/huangsam/sqlscope/schema"
)

// ExecutorFunc defines the function signature for executing different analysis modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteAnalyze loads the report inventory, analyzes it and prints the summary.
// It serves as the main entry point for the 'analyze' command.
func ExecuteAnalyze(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	records, err := ingest.LoadFile(cfg.InputPath, cfg.InputFormat)
	if err != nil {
		return fmt.Errorf("failed to load reports from %s: %w", cfg.InputPath, err)
	}
	summary, err := AnalyzeRecords(ctx, cfg, records, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteAnalysis(summary, cfg, time.Since(start))
}

// AnalyzeRecords runs the batch pipeline on records already in memory, using
// the report cache and run tracking when the manager provides them.
func AnalyzeRecords(ctx context.Context, cfg *contract.Config, records []schema.ReportRecord, mgr contract.CacheManager) (*schema.AnalysisSummary, error) {
	return runAnalysisCore(ctx, cfg, records, mgr)
}

// ExecuteCompare compares two SQL texts and prints the result.
func ExecuteCompare(_ context.Context, cfg *contract.Config, sqlA, sqlB string) error {
	start := time.Now()
	result := CompareWith(sqlA, sqlB, cfg.ClusterOptions().Weights)
	return outwriter.NewOutWriter().WriteComparison(result, cfg, time.Since(start))
}

// ExecuteInspect analyzes one SQL text and prints score, lineage and recommendations.
func ExecuteInspect(_ context.Context, cfg *contract.Config, sql string) error {
	start := time.Now()
	analysis := AnalyzeSQLWith(sql, OptionsFromConfig(cfg).Weights)
	return outwriter.NewOutWriter().WriteInspection(analysis, cfg, time.Since(start))
}

// ExecuteMetrics prints the active scoring definitions.
func ExecuteMetrics(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	defs := ScoringDefinitions(OptionsFromConfig(cfg), len(cfg.CustomWeights) > 0)
	return outwriter.NewOutWriter().WriteMetrics(defs, cfg)
}

// logAnalysisHeader prints a concise, 2-line header for each analysis run.
func logAnalysisHeader(cfg *contract.Config, count int) {
	source := filepath.Base(cfg.InputPath)
	if source == "" || source == "." {
		source = "inline"
	}
	if cfg.UseEmojis {
		fmt.Printf("🔎 Input: %s (%d reports)\n", source, count)
		fmt.Printf("🧮 Near duplicates: >= %.0f%%, consolidate at >= %.0f%%\n", cfg.NearThreshold, cfg.ConsolidateAt)
		return
	}
	fmt.Printf("Input: %s (%d reports)\n", source, count)
	fmt.Printf("Near duplicates: >= %.0f%%, consolidate at >= %.0f%%\n", cfg.NearThreshold, cfg.ConsolidateAt)
}
