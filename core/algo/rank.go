package algo

import (
	"sort"

	"github.com/huangsam/sqlscope/schema"
)

// RankReports returns the indices of reports ordered by complexity score descending.
// Equal scores keep their input order. The input slice is not modified.
func RankReports(reports []schema.AnalyzedReport) []int {
	order := make([]int, len(reports))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return reports[order[i]].ComplexityScore > reports[order[j]].ComplexityScore
	})
	return order
}

// TopReports returns the top 'limit' reports by score. If limit is greater than the
// number of reports, all reports are returned in ranked order.
func TopReports(reports []schema.AnalyzedReport, limit int) []schema.TopReport {
	order := RankReports(reports)
	if limit >= 0 && len(order) > limit {
		order = order[:limit]
	}
	top := make([]schema.TopReport, len(order))
	for i, idx := range order {
		r := reports[idx]
		top[i] = schema.TopReport{
			Name:     r.Name,
			Score:    r.ComplexityScore,
			Category: r.ComplexityCategory,
			Hours:    r.EstimatedHours,
		}
	}
	return top
}
