package schema

// CheckResult holds the results of a migration readiness check.
type CheckResult struct {
	Passed            bool
	TotalReports      int
	FailedReports     []CheckFailedReport
	MaxScore          float64
	MaxScoreReports   []string
	AvgScore          float64
	ScoreThreshold    float64
	DuplicateRatio    float64
	DuplicateLimit    float64
	DuplicateExceeded bool
}

// CheckFailedReport represents a report whose score exceeds the threshold.
type CheckFailedReport struct {
	Name      string
	Score     float64
	Category  Category
	Threshold float64
}
