package schema

// ClauseDiff lists tokens present in only one side of a clause.
type ClauseDiff struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
	Note    string   `json:"note"`
}

// Differences holds the per-clause token deltas of a comparison.
type Differences struct {
	SelectClause ClauseDiff `json:"select_clause"`
	FromClause   ClauseDiff `json:"from_clause"`
	WhereClause  ClauseDiff `json:"where_clause"`
}

// ComparisonResult holds the outcome of comparing two SQL texts.
type ComparisonResult struct {
	AreIdentical              bool             `json:"are_identical"`
	AreSemanticallyEquivalent bool             `json:"are_semantically_equivalent"`
	SimilarityPercent         float64          `json:"similarity_percent"`
	CompatibilityScore        int              `json:"compatibility_score"`
	MigrationQuality          MigrationQuality `json:"migration_quality"`
	Differences               Differences      `json:"differences"`
}
