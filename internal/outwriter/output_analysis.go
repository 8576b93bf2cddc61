package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/sqlscope/core/algo"
	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/huangsam/sqlscope/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteAnalysisResults outputs a batch summary, dispatching based on the output format configured.
func WriteAnalysisResults(w io.Writer, summary *schema.AnalysisSummary, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSONResultsForAnalysis(w, summary); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeCSVResultsForAnalysis(w, summary, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeAnalysisTable(w, summary, cfg, fmtFloat, duration)
	}
	return nil
}

// rankedReports returns the reports in ranking order, cut to the size of the top list.
func rankedReports(summary *schema.AnalysisSummary, limit int) []schema.AnalyzedReport {
	order := algo.RankReports(summary.Reports)
	if limit >= 0 && len(order) > limit {
		order = order[:limit]
	}
	out := make([]schema.AnalyzedReport, len(order))
	for i, idx := range order {
		out[i] = summary.Reports[idx]
	}
	return out
}

// writeAnalysisTable writes the human-readable summary with its tables.
func writeAnalysisTable(w io.Writer, summary *schema.AnalysisSummary, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	lines := []string{
		heading(cfg, "📋", fmt.Sprintf("Reports: %d total, %d unique, %d duplicates",
			summary.ReportCount, summary.UniqueCount, summary.DuplicateCount)),
		heading(cfg, "⏱️ ", fmt.Sprintf("Estimated effort: %s hours (avg complexity %s)",
			fmtFloat(summary.TotalEstimatedHours), fmtFloat(summary.AvgComplexity))),
		heading(cfg, "💡", fmt.Sprintf("Potential savings: skip %d reports, save %s hours",
			summary.PotentialSavings.ReportsToSkip, fmtFloat(summary.PotentialSavings.HoursSaved))),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if err := writeDistributionTable(w, summary); err != nil {
		return err
	}
	if err := writeTopReportsTable(w, summary, cfg, fmtFloat); err != nil {
		return err
	}
	if err := writeDuplicateGroupsTable(w, summary, cfg, fmtFloat); err != nil {
		return err
	}
	if cfg.Owner {
		if err := writeOwnersTable(w, summary); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "Analysis completed in %v with %d workers. Cache backend: %s\n",
		duration, cfg.Workers, cfg.CacheBackend)
	return err
}

func writeDistributionTable(w io.Writer, summary *schema.AnalysisSummary) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Category", "Effort", "Reports", "Share"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, c := range schema.AllCategories {
		n := summary.ComplexityDistribution[c]
		share := 0.0
		if summary.ReportCount > 0 {
			share = algo.Round(float64(n)*100/float64(summary.ReportCount), 1)
		}
		data = append(data, []string{string(c), contract.GetColorLabel(c), strconv.Itoa(n), fmt.Sprintf("%.1f%%", share)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

func writeTopReportsTable(w io.Writer, summary *schema.AnalysisSummary, cfg *contract.Config, fmtFloat func(float64) string) error {
	reports := rankedReports(summary, len(summary.TopComplexReports))
	if len(reports) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, heading(cfg, "🧩", "Most complex reports")); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	headers := []string{"Rank", "Report", "Score", "Label", "Hours"}
	if cfg.Detail {
		headers = append(headers, "Tables", "Tokenizer")
	}
	if cfg.Explain {
		headers = append(headers, "Explain")
	}
	if cfg.Owner {
		headers = append(headers, "Owner")
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := GetMaxTableNameWidth(cfg)
	var data [][]string
	for i, r := range reports {
		row := []string{
			strconv.Itoa(i + 1),
			contract.TruncateText(r.Name, nameWidth),
			fmtFloat(r.ComplexityScore),
			contract.GetColorLabel(r.ComplexityCategory),
			fmtFloat(r.EstimatedHours),
		}
		if cfg.Detail {
			row = append(row, strconv.Itoa(len(r.ReferencedTables)), string(r.Tokenizer))
		}
		if cfg.Explain {
			row = append(row, formatTopBreakdown(r.Breakdown))
		}
		if cfg.Owner {
			row = append(row, schema.OwnerOrUnknown(r.Owner))
		}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

func writeDuplicateGroupsTable(w io.Writer, summary *schema.AnalysisSummary, cfg *contract.Config, fmtFloat func(float64) string) error {
	if len(summary.DuplicateGroups) == 0 {
		_, err := fmt.Fprintf(w, "%s\n\n", heading(cfg, "✅", "No duplicate reports found"))
		return err
	}
	if _, err := fmt.Fprintln(w, heading(cfg, "👯", "Duplicate groups")); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Type", "Similarity", "Reports", "Recommendation"})
	nameWidth := GetMaxTableNameWidth(cfg)

	var data [][]string
	for i, g := range summary.DuplicateGroups {
		names := make([]string, len(g.MemberNames))
		for j, n := range g.MemberNames {
			names[j] = contract.TruncateText(n, nameWidth)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			string(g.Type),
			fmtFloat(g.SimilarityPercent) + "%",
			strings.Join(names, "\n"),
			g.Recommendation,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

func writeOwnersTable(w io.Writer, summary *schema.AnalysisSummary) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Owner", "Reports"})

	var data [][]string
	for _, owner := range sortedOwners(summary.ReportsByOwner) {
		data = append(data, []string{owner, strconv.Itoa(summary.ReportsByOwner[owner])})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

// writeCSVResultsForAnalysis writes one row per report in ranking order.
func writeCSVResultsForAnalysis(w io.Writer, summary *schema.AnalysisSummary, fmtFloat func(float64) string) error {
	header := []string{
		"rank",
		"report_id",
		"report_name",
		"owner",
		"score",
		"category",
		"label",
		"hours",
		"tables",
		"fingerprint",
		"tokenizer",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, r := range rankedReports(summary, -1) {
			rec := []string{
				strconv.Itoa(i + 1),
				r.ID,
				r.Name,
				schema.OwnerOrUnknown(r.Owner),
				fmtFloat(r.ComplexityScore),
				string(r.ComplexityCategory),
				schema.GetPlainLabel(r.ComplexityCategory),
				fmtFloat(r.EstimatedHours),
				strings.Join(r.ReferencedTables, "|"),
				r.Fingerprint,
				string(r.Tokenizer),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// analysisJSON replaces the report list of a summary with ranked, labeled reports.
type analysisJSON struct {
	*schema.AnalysisSummary
	Reports []schema.EnrichedReport `json:"reports"`
}

func writeJSONResultsForAnalysis(w io.Writer, summary *schema.AnalysisSummary) error {
	return writeJSON(w, analysisJSON{
		AnalysisSummary: summary,
		Reports:         schema.EnrichReports(rankedReports(summary, -1)),
	})
}
