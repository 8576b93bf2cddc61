package schema

// DuplicateGroup is a set of reports sharing a fingerprint (Exact) or a pair of
// canonical representatives above the similarity threshold (Near).
type DuplicateGroup struct {
	Type              GroupKind `json:"type"`
	SimilarityPercent float64   `json:"similarity_percent"`
	MemberIDs         []string  `json:"member_ids"`
	MemberNames       []string  `json:"member_names"`
	Recommendation    string    `json:"recommendation"`

	// Indices into AnalysisSummary.Reports, in member order.
	Members []int `json:"-"`
}

// TopReport is one row of the top-N complexity ranking.
type TopReport struct {
	Name     string   `json:"name"`
	Score    float64  `json:"score"`
	Category Category `json:"category"`
	Hours    float64  `json:"hours"`
}

// PotentialSavings estimates the work avoided by consolidating duplicates.
type PotentialSavings struct {
	ReportsToSkip int     `json:"reports_to_skip"`
	HoursSaved    float64 `json:"hours_saved"`
}

// AnalysisSummary is the terminal aggregate of one batch analysis.
type AnalysisSummary struct {
	ReportCount            int              `json:"report_count"`
	UniqueCount            int              `json:"unique_count"`
	DuplicateCount         int              `json:"duplicate_count"`
	ComplexityDistribution map[Category]int `json:"complexity_distribution"`
	TotalEstimatedHours    float64          `json:"total_estimated_hours"`
	AvgComplexity          float64          `json:"avg_complexity"`
	DuplicateGroups        []DuplicateGroup `json:"duplicate_groups"`
	TopComplexReports      []TopReport      `json:"top_complex_reports"`
	ReportsByOwner         map[string]int   `json:"reports_by_owner"`
	Reports                []AnalyzedReport `json:"reports"`
	PotentialSavings       PotentialSavings `json:"potential_savings"`
}
