package parquet

import "time"

// SampleAnalysisRuns generates AnalysisRun rows for demonstrations. The last
// run is still in progress and has its nullable fields unset.
func SampleAnalysisRuns() []AnalysisRun {
	now := time.Now()
	start1 := now.Add(-2 * time.Hour)
	end1 := start1.Add(4 * time.Second)
	duration1 := int32(end1.Sub(start1).Milliseconds())
	unique1 := int32(118)
	hours1 := 412.5
	params1 := `{"input":"finance_reports.csv","near_threshold":85,"workers":4}`

	start2 := now.Add(-10 * time.Minute)

	return []AnalysisRun{
		{
			AnalysisID:     1,
			RunUUID:        "2f1c7f0e-7d0a-4a8e-9a59-0c8f3c5b9e10",
			StartTime:      start1,
			EndTime:        &end1,
			RunDurationMs:  &duration1,
			TotalReports:   150,
			UniqueReports:  &unique1,
			TotalHours:     &hours1,
			ConfigParams:   &params1,
			SourceLocation: "finance_reports.csv",
		},
		{
			AnalysisID:     2,
			RunUUID:        "9b7d3c55-1e44-4c1f-8a0e-5d2b6f7a8c91",
			StartTime:      start2,
			TotalReports:   0,
			SourceLocation: "sales_reports.json",
		},
	}
}

// SampleReportScores generates ReportScore rows for demonstrations.
func SampleReportScores() []ReportScore {
	owner := "finance-bi"
	return []ReportScore{
		{
			AnalysisID:         1,
			ReportID:           "101",
			ReportName:         "Monthly Revenue",
			Owner:              &owner,
			Fingerprint:        "5e0b4c1f6ad3b3e1f0f6b1f6f0a3f9d7c1b2a3e4f5d6c7b8a9e0f1d2c3b4a5e6",
			ComplexityScore:    12.0,
			ComplexityCategory: "Medium",
			EstimatedHours:     6.0,
			TableCount:         3,
		},
		{
			AnalysisID:         1,
			ReportID:           "102",
			ReportName:         "Churn Cohorts",
			Fingerprint:        "a1b2c3d4e5f60718293a4b5c6d7e8f90112233445566778899aabbccddeeff00",
			ComplexityScore:    34.0,
			ComplexityCategory: "VeryComplex",
			EstimatedHours:     17.0,
			TableCount:         6,
		},
	}
}
