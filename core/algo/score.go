// Package algo has the pure scoring, fingerprinting, similarity and ranking functions.
package algo

import (
	"regexp"
	"strings"

	"github.com/huangsam/sqlscope/core/sqltext"
	"github.com/huangsam/sqlscope/schema"
	"github.com/shopspring/decimal"
)

// BaseScore is the score of a query with no weighted features.
const BaseScore = 1.0

// HoursPerPoint converts complexity points into migration hours.
const HoursPerPoint = 0.5

// LinePenalty adds Points when a query has more than MinLines lines.
type LinePenalty struct {
	MinLines int
	Points   float64
}

// Weights configures the additive complexity features.
type Weights struct {
	ExtraSelect  float64
	Join         float64
	Subquery     float64
	SetOperation float64
	Case         float64
	Aggregate    float64
	Window       float64
	CTE          float64 // per WITH keyword
	RecursiveCTE float64 // flat, replaces CTE when WITH RECURSIVE is present

	// Tiers are checked in order and only the first match applies.
	LinePenalties []LinePenalty
}

// DefaultWeights returns the standard weight table.
func DefaultWeights() Weights {
	return Weights{
		ExtraSelect:  1,
		Join:         2,
		Subquery:     3,
		SetOperation: 2,
		Case:         1,
		Aggregate:    1,
		Window:       3,
		CTE:          2,
		RecursiveCTE: 5,
		LinePenalties: []LinePenalty{
			{MinLines: 1000, Points: 10},
			{MinLines: 500, Points: 5},
			{MinLines: 100, Points: 2},
		},
	}
}

// WithOverrides returns a copy of w with the given per-feature weights replaced.
// Unknown keys are ignored. The line_count key scales every line tier.
func (w Weights) WithOverrides(overrides map[schema.BreakdownKey]float64) Weights {
	out := w
	out.LinePenalties = append([]LinePenalty(nil), w.LinePenalties...)
	for key, v := range overrides {
		switch key {
		case schema.BreakdownSelect:
			out.ExtraSelect = v
		case schema.BreakdownJoin:
			out.Join = v
		case schema.BreakdownSubquery:
			out.Subquery = v
		case schema.BreakdownSetOp:
			out.SetOperation = v
		case schema.BreakdownCase:
			out.Case = v
		case schema.BreakdownAggregate:
			out.Aggregate = v
		case schema.BreakdownWindow:
			out.Window = v
		case schema.BreakdownCTE:
			out.CTE = v
		case schema.BreakdownRecursiveCTE:
			out.RecursiveCTE = v
		case schema.BreakdownLines:
			for i := range out.LinePenalties {
				out.LinePenalties[i].Points *= v
			}
		}
	}
	return out
}

// Table returns the flat weights keyed by breakdown key.
func (w Weights) Table() map[schema.BreakdownKey]float64 {
	return map[schema.BreakdownKey]float64{
		schema.BreakdownSelect:       w.ExtraSelect,
		schema.BreakdownJoin:         w.Join,
		schema.BreakdownSubquery:     w.Subquery,
		schema.BreakdownSetOp:        w.SetOperation,
		schema.BreakdownCase:         w.Case,
		schema.BreakdownAggregate:    w.Aggregate,
		schema.BreakdownWindow:       w.Window,
		schema.BreakdownCTE:          w.CTE,
		schema.BreakdownRecursiveCTE: w.RecursiveCTE,
	}
}

var (
	subqueryPattern = regexp.MustCompile(`(?i)\(\s*SELECT`)

	setOperations = []string{"UNION", "INTERSECT", "EXCEPT"}
	aggregates    = []string{"SUM", "COUNT", "AVG", "MAX", "MIN", "STDDEV", "VARIANCE"}
	windows       = []string{"ROW_NUMBER", "RANK", "DENSE_RANK", "NTILE", "LAG", "LEAD", "FIRST_VALUE", "LAST_VALUE"}
)

// Score returns the complexity score of sql with the default weights.
func Score(sql string) float64 {
	score, _ := ScoreWithBreakdown(sql, DefaultWeights())
	return score
}

// ScoreWithBreakdown returns the complexity score and the points contributed by each feature.
func ScoreWithBreakdown(sql string, w Weights) (float64, map[schema.BreakdownKey]float64) {
	tokens, _ := sqltext.Stream(sql)
	return ScoreStream(sql, tokens, w)
}

// ScoreStream scores sql using an already computed token stream.
// Keyword counts come from bare word tokens, so literals and comments never count.
func ScoreStream(sql string, tokens []sqltext.Token, w Weights) (float64, map[schema.BreakdownKey]float64) {
	breakdown := make(map[schema.BreakdownKey]float64)
	if strings.TrimSpace(sql) == "" {
		return BaseScore, breakdown
	}

	counts := make(map[string]int)
	recursive := false
	for i, tok := range tokens {
		if !tok.IsWord() {
			continue
		}
		word := tok.Upper()
		counts[word]++
		if word == "WITH" && i+1 < len(tokens) && tokens[i+1].Upper() == "RECURSIVE" {
			recursive = true
		}
	}
	if strings.Contains(strings.ToUpper(sql), "WITH RECURSIVE") {
		recursive = true
	}

	add := func(key schema.BreakdownKey, n int, weight float64) {
		if n > 0 && weight != 0 {
			breakdown[key] += float64(n) * weight
		}
	}
	add(schema.BreakdownSelect, max(0, counts["SELECT"]-1), w.ExtraSelect)
	add(schema.BreakdownJoin, counts["JOIN"], w.Join)
	add(schema.BreakdownSubquery, len(subqueryPattern.FindAllStringIndex(sql, -1)), w.Subquery)
	add(schema.BreakdownSetOp, sumCounts(counts, setOperations), w.SetOperation)
	add(schema.BreakdownCase, counts["CASE"], w.Case)
	add(schema.BreakdownAggregate, sumCounts(counts, aggregates), w.Aggregate)
	add(schema.BreakdownWindow, sumCounts(counts, windows), w.Window)
	if recursive {
		add(schema.BreakdownCTE, 1, w.RecursiveCTE)
	} else {
		add(schema.BreakdownCTE, counts["WITH"], w.CTE)
	}

	lines := sqltext.LineCount(sql)
	for _, tier := range w.LinePenalties {
		if lines > tier.MinLines {
			add(schema.BreakdownLines, 1, tier.Points)
			break
		}
	}

	score := BaseScore
	for _, v := range breakdown {
		score += v
	}
	return Round(score, 1), breakdown
}

func sumCounts(counts map[string]int, words []string) int {
	total := 0
	for _, w := range words {
		total += counts[w]
	}
	return total
}

// Category maps a score to its complexity category.
func Category(score float64) schema.Category {
	return schema.CategoryFor(score)
}

// EstimatedHours returns round(score × 0.5, 1).
func EstimatedHours(score float64) float64 {
	return decimal.NewFromFloat(score).
		Mul(decimal.NewFromFloat(HoursPerPoint)).
		Round(1).
		InexactFloat64()
}

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
