package schema

import "time"

// AnalysisRunRecord represents a row from the sqlscope_analysis_runs table.
type AnalysisRunRecord struct {
	AnalysisID     int64
	RunUUID        string
	StartTime      time.Time
	EndTime        *time.Time
	RunDurationMs  *int32
	TotalReports   int32
	UniqueReports  *int32
	TotalHours     *float64
	ConfigParams   *string
	SourceLocation string
}

// ReportScoreRecord represents a row from the sqlscope_report_scores table.
type ReportScoreRecord struct {
	AnalysisID         int64
	ReportID           string
	ReportName         string
	Owner              *string
	Fingerprint        string
	ComplexityScore    float64
	ComplexityCategory string
	EstimatedHours     float64
	TableCount         int32
}

// DuplicateGroupRecord represents a row from the sqlscope_duplicate_groups table.
type DuplicateGroupRecord struct {
	AnalysisID        int64
	GroupIndex        int32
	GroupType         string
	SimilarityPercent float64
	MemberNames       string // newline separated
	Recommendation    string
}
