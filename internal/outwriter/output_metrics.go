package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/huangsam/sqlscope/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// featureDescriptions explains what each weighted feature counts.
var featureDescriptions = map[schema.BreakdownKey]string{
	schema.BreakdownSelect:       "each SELECT beyond the first",
	schema.BreakdownJoin:         "each JOIN",
	schema.BreakdownSubquery:     "each '( SELECT' subquery",
	schema.BreakdownSetOp:        "each UNION, INTERSECT or EXCEPT",
	schema.BreakdownCase:         "each CASE",
	schema.BreakdownAggregate:    "each aggregate call",
	schema.BreakdownWindow:       "each window function",
	schema.BreakdownCTE:          "each WITH",
	schema.BreakdownRecursiveCTE: "flat, replaces cte for WITH RECURSIVE",
}

// qualityOrder lists the quality bands from best to worst.
var qualityOrder = []schema.MigrationQuality{
	schema.ExcellentQuality, schema.GoodQuality, schema.FairQuality, schema.ReviewQuality,
}

// WriteMetricsDefinitions outputs the scoring definitions, dispatching based on the output format configured.
func WriteMetricsDefinitions(w io.Writer, defs schema.ScoringDefinitions, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSON(w, defs); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeCSVMetricsDefinitions(w, defs); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeMetricsText(w, defs, cfg)
	}
	return nil
}

func writeMetricsText(w io.Writer, defs schema.ScoringDefinitions, cfg *contract.Config) error {
	title := "Complexity score = base + Σ weight × count + line penalty"
	if defs.WeightsCustomized {
		title += " (custom weights active)"
	}
	header := []string{
		heading(cfg, "📐", title),
		fmt.Sprintf("  base = %g, hours = score × %g", defs.BaseScore, defs.HoursPerPoint),
		"",
	}
	for _, line := range header {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	weights := tablewriter.NewWriter(w)
	weights.Header([]string{"Feature", "Weight", "Counts"})
	var data [][]string
	for _, key := range schema.AllBreakdownKeys {
		v, ok := defs.Weights[key]
		if !ok {
			continue
		}
		data = append(data, []string{string(key), strconv.FormatFloat(v, 'g', -1, 64), featureDescriptions[key]})
	}
	if err := weights.Bulk(data); err != nil {
		return err
	}
	if err := weights.Render(); err != nil {
		return err
	}

	tiers := tablewriter.NewWriter(w)
	tiers.Header([]string{"Lines over", "Points"})
	tiers.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	data = nil
	for _, t := range defs.LineTiers {
		data = append(data, []string{strconv.Itoa(t.MinLines), strconv.FormatFloat(t.Points, 'g', -1, 64)})
	}
	if err := tiers.Bulk(data); err != nil {
		return err
	}
	if err := tiers.Render(); err != nil {
		return err
	}

	cats := tablewriter.NewWriter(w)
	cats.Header([]string{"Category", "Effort", "Score up to"})
	data = nil
	for _, c := range defs.Categories {
		upTo := "-"
		if c.MaxScore > 0 {
			upTo = strconv.FormatFloat(c.MaxScore, 'g', -1, 64)
		}
		data = append(data, []string{string(c.Category), c.Label, upTo})
	}
	if err := cats.Bulk(data); err != nil {
		return err
	}
	if err := cats.Render(); err != nil {
		return err
	}

	footer := []string{
		"",
		heading(cfg, "🔗", fmt.Sprintf("Similarity = %.2f × token Jaccard + %.2f × edit similarity", defs.TokenWeight, defs.EditWeight)),
		fmt.Sprintf("  near duplicate at >= %g%%, consolidate at >= %g%%, equivalent at >= %g%%",
			defs.NearThreshold, defs.ConsolidateAt, defs.EquivalentAt),
	}
	for _, q := range qualityOrder {
		if floor, ok := defs.QualityBands[q]; ok {
			footer = append(footer, fmt.Sprintf("  %-9s compatibility >= %d", q, floor))
		}
	}
	for _, line := range footer {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// writeCSVMetricsDefinitions flattens the definitions into section/key/value rows.
func writeCSVMetricsDefinitions(w io.Writer, defs schema.ScoringDefinitions) error {
	ff := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return writeCSVWithHeader(w, []string{"section", "key", "value"}, func(cw *csv.Writer) error {
		rows := [][]string{
			{"score", "base_score", ff(defs.BaseScore)},
			{"score", "hours_per_point", ff(defs.HoursPerPoint)},
		}
		for _, key := range schema.AllBreakdownKeys {
			if v, ok := defs.Weights[key]; ok {
				rows = append(rows, []string{"weight", string(key), ff(v)})
			}
		}
		for _, t := range defs.LineTiers {
			rows = append(rows, []string{"line_tier", strconv.Itoa(t.MinLines), ff(t.Points)})
		}
		for _, c := range defs.Categories {
			rows = append(rows, []string{"category", string(c.Category), ff(c.MaxScore)})
		}
		rows = append(rows,
			[]string{"similarity", "token_weight", ff(defs.TokenWeight)},
			[]string{"similarity", "edit_weight", ff(defs.EditWeight)},
			[]string{"threshold", "near", ff(defs.NearThreshold)},
			[]string{"threshold", "consolidate", ff(defs.ConsolidateAt)},
			[]string{"threshold", "equivalent", ff(defs.EquivalentAt)},
		)
		for _, q := range qualityOrder {
			if v, ok := defs.QualityBands[q]; ok {
				rows = append(rows, []string{"quality", string(q), strconv.Itoa(v)})
			}
		}
		rows = append(rows, []string{"weights", "customized", strconv.FormatBool(defs.WeightsCustomized)})
		return cw.WriteAll(rows)
	})
}
