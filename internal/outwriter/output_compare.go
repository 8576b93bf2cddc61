package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/huangsam/sqlscope/schema"
	"github.com/olekukonko/tablewriter"
)

// clauseRow pairs a clause name with its differences.
type clauseRow struct {
	Name string
	Diff schema.ClauseDiff
}

func clauseRows(d schema.Differences) []clauseRow {
	return []clauseRow{
		{"SELECT", d.SelectClause},
		{"FROM", d.FromClause},
		{"WHERE", d.WhereClause},
	}
}

// WriteComparisonResults outputs the comparison of two queries, dispatching based on the output format configured.
func WriteComparisonResults(w io.Writer, result schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(max(cfg.Precision, 2))

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSON(w, result); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeCSVResultsForComparison(w, result, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeComparisonTable(w, result, cfg, fmtFloat, duration)
	}
	return nil
}

// writeComparisonTable writes the verdict followed by the per-clause deltas.
func writeComparisonTable(w io.Writer, result schema.ComparisonResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	red, green, yellow := fmt.Sprint, fmt.Sprint, fmt.Sprint
	if cfg.UseColors {
		red = color.New(color.FgRed).SprintFunc()
		green = color.New(color.FgGreen).SprintFunc()
		yellow = color.New(color.FgYellow).SprintFunc()
	}
	quality := string(result.MigrationQuality)
	switch result.MigrationQuality {
	case schema.ExcellentQuality, schema.GoodQuality:
		quality = green(quality)
	case schema.FairQuality:
		quality = yellow(quality)
	default:
		quality = red(quality)
	}

	lines := []string{
		heading(cfg, "🔍", "SQL comparison"),
		fmt.Sprintf("  Identical:   %s", yesNo(result.AreIdentical)),
		fmt.Sprintf("  Equivalent:  %s", yesNo(result.AreSemanticallyEquivalent)),
		fmt.Sprintf("  Similarity:  %s%%", fmtFloat(result.SimilarityPercent)),
		fmt.Sprintf("  Compatible:  %d (%s)", result.CompatibilityScore, quality),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if !result.AreIdentical {
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Clause", "Added", "Removed", "Note"})

		var data [][]string
		for _, c := range clauseRows(result.Differences) {
			data = append(data, []string{
				c.Name,
				green(strings.Join(c.Diff.Added, " ")),
				red(strings.Join(c.Diff.Removed, " ")),
				c.Diff.Note,
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "Comparison completed in %v\n", duration)
	return err
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// writeCSVResultsForComparison writes one row per clause, repeating the verdict columns.
func writeCSVResultsForComparison(w io.Writer, result schema.ComparisonResult, fmtFloat func(float64) string) error {
	header := []string{
		"clause",
		"added",
		"removed",
		"note",
		"are_identical",
		"are_semantically_equivalent",
		"similarity_percent",
		"compatibility_score",
		"migration_quality",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, c := range clauseRows(result.Differences) {
			rec := []string{
				strings.ToLower(c.Name),
				strings.Join(c.Diff.Added, "|"),
				strings.Join(c.Diff.Removed, "|"),
				c.Diff.Note,
				strconv.FormatBool(result.AreIdentical),
				strconv.FormatBool(result.AreSemanticallyEquivalent),
				fmtFloat(result.SimilarityPercent),
				strconv.Itoa(result.CompatibilityScore),
				string(result.MigrationQuality),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
