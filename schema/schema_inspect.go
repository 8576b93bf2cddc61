package schema

// Lineage is the heuristic set of tables and columns a query touches.
type Lineage struct {
	Tables  []string `json:"tables"`
	Columns []string `json:"columns"`
}

// SQLMetrics has simple size metrics of a query.
type SQLMetrics struct {
	TablesReferenced int `json:"tables_referenced"`
	LineCount        int `json:"line_count"`
}

// SQLAnalysis is the single-query inspection result.
type SQLAnalysis struct {
	ComplexityScore    float64                  `json:"complexity_score"`
	ComplexityCategory Category                 `json:"complexity_category"`
	EstimatedHours     float64                  `json:"estimated_hours"`
	RiskLevel          RiskLevel                `json:"risk_level"`
	Metrics            SQLMetrics               `json:"metrics"`
	Lineage            Lineage                  `json:"lineage"`
	Recommendations    []string                 `json:"recommendations"`
	Breakdown          map[BreakdownKey]float64 `json:"breakdown,omitempty"`
}
