package core

import (
	"strings"

	"github.com/huangsam/sqlscope/core/algo"
	"github.com/huangsam/sqlscope/core/lineage"
	"github.com/huangsam/sqlscope/core/sqltext"
	"github.com/huangsam/sqlscope/schema"
)

// migrationHint pairs a dialect-specific construct with its porting advice.
type migrationHint struct {
	applies func(upper string) bool
	advice  string
}

func contains(word string) func(string) bool {
	return func(upper string) bool { return strings.Contains(upper, word) }
}

var migrationHints = []migrationHint{
	{contains("DECODE"), "Replace DECODE with CASE WHEN"},
	{contains("NVL"), "Replace NVL with COALESCE or ISNULL"},
	{contains("ROWNUM"), "Convert ROWNUM to ROW_NUMBER() OVER (ORDER BY ...)"},
	{contains("SYSDATE"), "Replace SYSDATE with target DB current date function"},
	{func(upper string) bool {
		return strings.Contains(upper, "TOP ") && !strings.Contains(upper, "LIMIT")
	}, "Consider TOP vs LIMIT for target platform"},
}

// AnalyzeSQL inspects a single query with the default weights.
func AnalyzeSQL(sql string) schema.SQLAnalysis {
	return AnalyzeSQLWith(sql, algo.DefaultWeights())
}

// AnalyzeSQLWith scores one query and adds risk, lineage and dialect porting hints.
// Blank text yields the minimal result.
func AnalyzeSQLWith(sql string, w algo.Weights) schema.SQLAnalysis {
	if strings.TrimSpace(sql) == "" {
		return schema.SQLAnalysis{
			ComplexityScore:    algo.BaseScore,
			ComplexityCategory: algo.Category(algo.BaseScore),
			EstimatedHours:     algo.EstimatedHours(algo.BaseScore),
			RiskLevel:          schema.RiskFor(algo.BaseScore),
			Lineage:            schema.Lineage{Tables: []string{}, Columns: []string{}},
			Recommendations:    []string{},
		}
	}

	tokens, _ := sqltext.Stream(sql)
	score, breakdown := algo.ScoreStream(sql, tokens, w)
	lin := lineage.Extract(sql)

	return schema.SQLAnalysis{
		ComplexityScore:    score,
		ComplexityCategory: algo.Category(score),
		EstimatedHours:     algo.EstimatedHours(score),
		RiskLevel:          schema.RiskFor(score),
		Metrics: schema.SQLMetrics{
			TablesReferenced: len(lin.Tables),
			LineCount:        sqltext.LineCount(sql),
		},
		Lineage:         lin,
		Recommendations: recommendations(sql),
		Breakdown:       breakdown,
	}
}

func recommendations(sql string) []string {
	upper := strings.ToUpper(sql)
	out := []string{}
	for _, h := range migrationHints {
		if h.applies(upper) {
			out = append(out, h.advice)
		}
	}
	return out
}
