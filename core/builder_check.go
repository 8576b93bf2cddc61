package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/huangsam/sqlscope/internal/ingest"
	"github.com/huangsam/sqlscope/schema"
	"github.com/shopspring/decimal"
)

// CheckResultBuilder builds the check result using a builder pattern.
type CheckResultBuilder struct {
	ctx           context.Context
	cfg           *contract.Config
	mgr           contract.CacheManager
	records       []schema.ReportRecord
	summary       *schema.AnalysisSummary
	failedReports []schema.CheckFailedReport
	maxScore      float64
	maxReports    []string
	avgScore      float64
	dupRatio      float64
	result        *schema.CheckResult
}

// NewCheckResultBuilder creates a new builder for check results.
func NewCheckResultBuilder(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) *CheckResultBuilder {
	return &CheckResultBuilder{ctx: ctx, cfg: cfg, mgr: mgr}
}

// LoadRecords reads the report inventory named by the config.
func (b *CheckResultBuilder) LoadRecords() (*CheckResultBuilder, error) {
	if b.cfg.InputPath == "" {
		return nil, fmt.Errorf("check command requires an input file. Example: sqlscope check reports.csv --max-score 30")
	}
	records, err := ingest.LoadFile(b.cfg.InputPath, b.cfg.InputFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to load reports from %s: %w", b.cfg.InputPath, err)
	}
	if len(records) == 0 {
		fmt.Println("No reports found in input - check passed")
		b.result = &schema.CheckResult{Passed: true}
		return b, nil
	}
	b.records = records
	return b, nil
}

// SetRecords uses records that were loaded elsewhere.
func (b *CheckResultBuilder) SetRecords(records []schema.ReportRecord) *CheckResultBuilder {
	b.records = records
	return b
}

// RunAnalysis analyzes the records without printing the analysis header.
func (b *CheckResultBuilder) RunAnalysis() (*CheckResultBuilder, error) {
	summary, err := runAnalysisCore(WithSuppressHeader(b.ctx), b.cfg, b.records, b.mgr)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze reports: %w", err)
	}
	b.summary = summary
	return b, nil
}

// ComputeMetrics finds the highest scoring reports and every report over the score limit.
func (b *CheckResultBuilder) ComputeMetrics() *CheckResultBuilder {
	reports := b.summary.Reports
	b.failedReports = []schema.CheckFailedReport{}
	b.maxReports = nil
	b.maxScore = 0

	sum := decimal.Zero
	for _, r := range reports {
		sum = sum.Add(decimal.NewFromFloat(r.ComplexityScore))
		switch {
		case r.ComplexityScore > b.maxScore:
			b.maxScore = r.ComplexityScore
			b.maxReports = []string{r.Name}
		case r.ComplexityScore == b.maxScore:
			b.maxReports = append(b.maxReports, r.Name)
		}
		if b.cfg.MaxScore > 0 && r.ComplexityScore > b.cfg.MaxScore {
			b.failedReports = append(b.failedReports, schema.CheckFailedReport{
				Name:      r.Name,
				Score:     r.ComplexityScore,
				Category:  r.ComplexityCategory,
				Threshold: b.cfg.MaxScore,
			})
		}
	}
	sort.SliceStable(b.failedReports, func(i, j int) bool {
		return b.failedReports[i].Score > b.failedReports[j].Score
	})

	if n := len(reports); n > 0 {
		b.avgScore = sum.Div(decimal.NewFromInt(int64(n))).Round(1).InexactFloat64()
		b.dupRatio = decimal.NewFromInt(int64(b.summary.DuplicateCount)).
			Div(decimal.NewFromInt(int64(n))).Round(3).InexactFloat64()
	}
	return b
}

// BuildResult constructs the final CheckResult.
func (b *CheckResultBuilder) BuildResult() *CheckResultBuilder {
	dupExceeded := b.cfg.MaxDuplicateRatio > 0 && b.dupRatio > b.cfg.MaxDuplicateRatio
	b.result = &schema.CheckResult{
		Passed:            len(b.failedReports) == 0 && !dupExceeded,
		TotalReports:      len(b.summary.Reports),
		FailedReports:     b.failedReports,
		MaxScore:          b.maxScore,
		MaxScoreReports:   b.maxReports,
		AvgScore:          b.avgScore,
		ScoreThreshold:    b.cfg.MaxScore,
		DuplicateRatio:    b.dupRatio,
		DuplicateLimit:    b.cfg.MaxDuplicateRatio,
		DuplicateExceeded: dupExceeded,
	}
	return b
}

// GetResult returns the built CheckResult.
func (b *CheckResultBuilder) GetResult() *schema.CheckResult {
	return b.result
}
