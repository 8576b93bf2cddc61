// Package schema has models and constants for all parts of sqlscope.
package schema

// ReportRecord is one BI report as supplied by ingestion.
type ReportRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Owner   string `json:"owner,omitempty"`
	SQLText string `json:"sql_text"`
}

// AnalyzedReport is derived once from a ReportRecord and never mutated afterwards.
type AnalyzedReport struct {
	ID                 string                   `json:"id"`
	Name               string                   `json:"name"`
	Owner              string                   `json:"owner"`
	SQLText            string                   `json:"sql_text"`
	NormalizedSQL      string                   `json:"normalized_sql"`
	TokenSet           []string                 `json:"token_set"` // sorted, upper-case
	ComplexityScore    float64                  `json:"complexity_score"`
	ComplexityCategory Category                 `json:"complexity_category"`
	EstimatedHours     float64                  `json:"estimated_hours"`
	Fingerprint        string                   `json:"fingerprint"` // empty when the normalized SQL is empty
	ReferencedTables   []string                 `json:"referenced_tables"`
	Breakdown          map[BreakdownKey]float64 `json:"breakdown,omitempty"`
	Tokenizer          TokenizerTier            `json:"tokenizer"`
}
