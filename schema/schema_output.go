package schema

// EnrichedReport adds presentation data to an AnalyzedReport.
type EnrichedReport struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	AnalyzedReport
}

// GetPlainLabel returns a plain text label indicating the migration effort
// based on the complexity category.
func GetPlainLabel(c Category) string {
	switch c {
	case VeryComplexCategory:
		return "Critical"
	case ComplexCategory:
		return "High"
	case MediumCategory:
		return "Moderate"
	default:
		return "Low"
	}
}

// EnrichReports adds rank and label to a list of reports.
func EnrichReports(reports []AnalyzedReport) []EnrichedReport {
	output := make([]EnrichedReport, len(reports))
	for i, r := range reports {
		output[i] = EnrichedReport{
			Rank:           i + 1,
			Label:          GetPlainLabel(r.ComplexityCategory),
			AnalyzedReport: r,
		}
	}
	return output
}
