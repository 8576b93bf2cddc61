package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/sqlscope/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readBack[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[T](file)
	defer reader.Close()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{"analysis runs", new(AnalysisRun), []string{
			"analysis_id", "run_uuid", "start_time", "end_time", "run_duration_ms",
			"total_reports", "unique_reports", "total_hours", "config_params", "source_location",
		}},
		{"report scores", new(ReportScore), []string{
			"analysis_id", "report_id", "report_name", "owner", "fingerprint",
			"complexity_score", "complexity_category", "estimated_hours", "table_count",
		}},
		{"duplicate groups", new(DuplicateGroup), []string{
			"analysis_id", "group_index", "group_type", "similarity_percent", "member_names", "recommendation",
		}},
		{"report rows", new(ReportRow), []string{"report_id", "report_name", "owner", "query_sql"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.model)
			for _, col := range tt.columns {
				_, ok := s.Lookup(col)
				assert.True(t, ok, "column %s should exist", col)
			}
		})
	}
}

func TestWriteAnalysisRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "analysis_runs.parquet")
	data := SampleAnalysisRuns()

	require.NoError(t, WriteAnalysisRunsParquet(data, outputPath))
	got := readBack[AnalysisRun](t, outputPath)
	require.Len(t, got, len(data))

	assert.Equal(t, data[0].RunUUID, got[0].RunUUID)
	assert.Equal(t, data[0].TotalReports, got[0].TotalReports)
	require.NotNil(t, got[0].EndTime)
	assert.WithinDuration(t, *data[0].EndTime, *got[0].EndTime, time.Nanosecond)
	require.NotNil(t, got[0].TotalHours)
	assert.InDelta(t, *data[0].TotalHours, *got[0].TotalHours, 0.001)

	assert.Nil(t, got[1].EndTime)
	assert.Nil(t, got[1].RunDurationMs)
	assert.Nil(t, got[1].UniqueReports)
	assert.Nil(t, got[1].ConfigParams)
	assert.Equal(t, "sales_reports.json", got[1].SourceLocation)
}

func TestWriteReportScoresParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "report_scores.parquet")
	data := SampleReportScores()

	require.NoError(t, WriteReportScoresParquet(data, outputPath))
	got := readBack[ReportScore](t, outputPath)
	require.Len(t, got, 2)

	assert.Equal(t, "Monthly Revenue", got[0].ReportName)
	require.NotNil(t, got[0].Owner)
	assert.Equal(t, "finance-bi", *got[0].Owner)
	assert.Nil(t, got[1].Owner)
	assert.InDelta(t, 34.0, got[1].ComplexityScore, 0.001)
	assert.Equal(t, int32(6), got[1].TableCount)
}

func TestWriteDuplicateGroupsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "groups.parquet")
	data := ConvertDuplicateGroupRecords([]schema.DuplicateGroupRecord{
		{AnalysisID: 1, GroupIndex: 0, GroupType: "Exact", SimilarityPercent: 100, MemberNames: "a\nb", Recommendation: schema.ExactRecommendation},
	})

	require.NoError(t, WriteDuplicateGroupsParquet(data, outputPath))
	got := readBack[DuplicateGroup](t, outputPath)
	require.Len(t, got, 1)
	assert.Equal(t, "a\nb", got[0].MemberNames)
	assert.Equal(t, schema.ExactRecommendation, got[0].Recommendation)
}

func TestReportRowsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.parquet")
	id, name, sql := "7", "Daily Orders", "SELECT * FROM orders"
	rows := []ReportRow{
		{ReportID: &id, ReportName: &name, QuerySQL: &sql},
		{QuerySQL: &sql},
	}

	require.NoError(t, WriteReportRowsParquet(rows, path))
	got, err := ReadReportRowsParquet(path)
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.NotNil(t, got[0].ReportName)
	assert.Equal(t, "Daily Orders", *got[0].ReportName)
	assert.Nil(t, got[0].Owner)
	assert.Nil(t, got[1].ReportID)
	require.NotNil(t, got[1].QuerySQL)
	assert.Equal(t, sql, *got[1].QuerySQL)
}

func TestReadReportRowsParquetMissingFile(t *testing.T) {
	_, err := ReadReportRowsParquet(filepath.Join(t.TempDir(), "missing.parquet"))
	assert.Error(t, err)
}

func TestWriteEmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteAnalysisRunsParquet([]AnalysisRun{}, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), "output file should contain schema even if empty")
}

func TestWriteInvalidPath(t *testing.T) {
	err := WriteReportScoresParquet(SampleReportScores(), "/nonexistent/directory/output.parquet")
	assert.Error(t, err)
}

func TestConvertRecords(t *testing.T) {
	owner := "ops"
	end := time.Now()
	runs := ConvertAnalysisRunRecords([]schema.AnalysisRunRecord{
		{AnalysisID: 3, RunUUID: "u", StartTime: end.Add(-time.Second), EndTime: &end, TotalReports: 9, SourceLocation: "x.csv"},
	})
	require.Len(t, runs, 1)
	assert.Equal(t, int64(3), runs[0].AnalysisID)
	assert.Equal(t, "x.csv", runs[0].SourceLocation)
	assert.Equal(t, &end, runs[0].EndTime)

	scores := ConvertReportScoreRecords([]schema.ReportScoreRecord{
		{AnalysisID: 3, ReportID: "1", ReportName: "r", Owner: &owner, ComplexityScore: 4, ComplexityCategory: "Simple", EstimatedHours: 2, TableCount: 1},
	})
	require.Len(t, scores, 1)
	assert.Equal(t, "ops", *scores[0].Owner)
	assert.Equal(t, 2.0, scores[0].EstimatedHours)
}
