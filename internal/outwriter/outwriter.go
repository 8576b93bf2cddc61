// Package outwriter has output and writer logic.
package outwriter

import (
	"io"
	"os"
	"time"

	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/huangsam/sqlscope/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteAnalysis prints a batch summary using the configured output format.
func (ow *OutWriter) WriteAnalysis(summary *schema.AnalysisSummary, cfg *contract.Config, duration time.Duration) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteAnalysisResults(w, summary, cfg, duration)
	}, successMessage(cfg.Output))
}

// WriteComparison prints the comparison of two queries using the configured output format.
func (ow *OutWriter) WriteComparison(result schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteComparisonResults(w, result, cfg, duration)
	}, successMessage(cfg.Output))
}

// WriteInspection prints a single query inspection using the configured output format.
func (ow *OutWriter) WriteInspection(analysis schema.SQLAnalysis, cfg *contract.Config, duration time.Duration) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteInspectionResults(w, analysis, cfg, duration)
	}, successMessage(cfg.Output))
}

// WriteMetrics prints the scoring definitions using the configured output format.
func (ow *OutWriter) WriteMetrics(defs schema.ScoringDefinitions, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteMetricsDefinitions(w, defs, cfg)
	}, successMessage(cfg.Output))
}

// GetMaxTableNameWidth calculates the maximum width for report names in table output
// based on terminal width and table configuration.
func GetMaxTableNameWidth(cfg *contract.Config) int {
	termWidth := cfg.Width // absolute override from flag/env
	if termWidth == 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank + Score + Label + Hours with borders/padding
	baseWidth := 40
	if cfg.Detail {
		baseWidth += 30 // Tables + Tokenizer
	}
	if cfg.Explain {
		baseWidth += 35
	}
	if cfg.Owner {
		baseWidth += 20
	}
	baseWidth += 10

	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 60 {
		return 60
	}
	return available
}
