package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/huangsam/sqlscope/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteInspectionResults outputs one query inspection, dispatching based on the output format configured.
func WriteInspectionResults(w io.Writer, analysis schema.SQLAnalysis, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSON(w, analysis); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeCSVResultsForInspection(w, analysis, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeInspectionTable(w, analysis, cfg, fmtFloat, duration)
	}
	return nil
}

func writeInspectionTable(w io.Writer, a schema.SQLAnalysis, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	lines := []string{
		heading(cfg, "🧮", fmt.Sprintf("Score: %s (%s, %s)",
			fmtFloat(a.ComplexityScore), a.ComplexityCategory, contract.GetColorLabel(a.ComplexityCategory))),
		fmt.Sprintf("  Estimated hours: %s", fmtFloat(a.EstimatedHours)),
		fmt.Sprintf("  Risk:            %s", contract.GetRiskColorLabel(a.RiskLevel)),
		fmt.Sprintf("  Lines:           %d", a.Metrics.LineCount),
		fmt.Sprintf("  Tables:          %s", joinOrDash(a.Lineage.Tables)),
		fmt.Sprintf("  Columns:         %s", contract.TruncateText(joinOrDash(a.Lineage.Columns), GetMaxTableNameWidth(cfg)*2)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if len(a.Breakdown) > 0 {
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Feature", "Points"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})
		var data [][]string
		for _, key := range schema.AllBreakdownKeys {
			if v, ok := a.Breakdown[key]; ok {
				data = append(data, []string{string(key), fmtFloat(v)})
			}
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	if len(a.Recommendations) > 0 {
		if _, err := fmt.Fprintln(w, heading(cfg, "🛠️ ", "Migration hints")); err != nil {
			return err
		}
		for _, r := range a.Recommendations {
			if _, err := fmt.Fprintf(w, "  - %s\n", r); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "Inspection completed in %v\n", duration)
	return err
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

// writeCSVResultsForInspection writes the inspection as metric/value pairs.
func writeCSVResultsForInspection(w io.Writer, a schema.SQLAnalysis, fmtFloat func(float64) string) error {
	return writeCSVWithHeader(w, []string{"metric", "value"}, func(cw *csv.Writer) error {
		rows := [][]string{
			{"complexity_score", fmtFloat(a.ComplexityScore)},
			{"complexity_category", string(a.ComplexityCategory)},
			{"estimated_hours", fmtFloat(a.EstimatedHours)},
			{"risk_level", string(a.RiskLevel)},
			{"tables_referenced", strconv.Itoa(a.Metrics.TablesReferenced)},
			{"line_count", strconv.Itoa(a.Metrics.LineCount)},
			{"tables", strings.Join(a.Lineage.Tables, "|")},
			{"columns", strings.Join(a.Lineage.Columns, "|")},
			{"recommendations", strings.Join(a.Recommendations, "|")},
		}
		for _, key := range schema.AllBreakdownKeys {
			if v, ok := a.Breakdown[key]; ok {
				rows = append(rows, []string{"breakdown_" + string(key), fmtFloat(v)})
			}
		}
		return cw.WriteAll(rows)
	})
}
