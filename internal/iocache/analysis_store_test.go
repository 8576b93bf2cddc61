package iocache

import (
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/huangsam/sqlscope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteAnalysis(t *testing.T) *AnalysisStoreImpl {
	t.Helper()
	store, err := NewAnalysisStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "analysis.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleAnalyzed() []schema.AnalyzedReport {
	return []schema.AnalyzedReport{
		{ID: "1", Name: "Orders", Owner: "ana", Fingerprint: "aa", ComplexityScore: 1, ComplexityCategory: schema.SimpleCategory, EstimatedHours: 0.5, ReferencedTables: []string{"ORDERS"}},
		{ID: "2", Name: "Orders Copy", Fingerprint: "aa", ComplexityScore: 1, ComplexityCategory: schema.SimpleCategory, EstimatedHours: 0.5, ReferencedTables: []string{"ORDERS"}},
		{ID: "3", Name: "Cohorts", Owner: "bo", Fingerprint: "bb", ComplexityScore: 18, ComplexityCategory: schema.ComplexCategory, EstimatedHours: 9, ReferencedTables: []string{"ORDERS", "USERS"}},
	}
}

func TestAnalysisStoreNoneBackend(t *testing.T) {
	store, err := NewAnalysisStore(schema.NoneBackend, "")
	require.NoError(t, err)

	id, err := store.BeginAnalysis(time.Now(), "reports.csv", map[string]any{"workers": 2})
	assert.NoError(t, err)
	assert.Zero(t, id)
	assert.NoError(t, store.EndAnalysis(1, time.Now(), &schema.AnalysisSummary{}))
	assert.NoError(t, store.RecordReportScore(1, schema.AnalyzedReport{}))
	assert.NoError(t, store.RecordDuplicateGroup(1, 0, schema.DuplicateGroup{}))

	runs, err := store.GetAllAnalysisRuns()
	assert.NoError(t, err)
	assert.Nil(t, runs)
	assert.NoError(t, store.Close())
}

func TestAnalysisStoreSQLiteRoundTrip(t *testing.T) {
	store := newSQLiteAnalysis(t)
	store.newUUID = func() string { return "run-uuid-1" }

	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	id, err := store.BeginAnalysis(start, "reports.csv", map[string]any{"workers": 4})
	require.NoError(t, err)
	assert.Positive(t, id)

	for _, r := range sampleAnalyzed() {
		require.NoError(t, store.RecordReportScore(id, r))
	}
	group := schema.DuplicateGroup{
		Type:              schema.ExactGroup,
		SimilarityPercent: 100,
		MemberNames:       []string{"Orders", "Orders Copy"},
		Recommendation:    schema.ExactRecommendation,
	}
	require.NoError(t, store.RecordDuplicateGroup(id, 0, group))

	summary := &schema.AnalysisSummary{ReportCount: 3, UniqueCount: 2, TotalEstimatedHours: 10}
	require.NoError(t, store.EndAnalysis(id, start.Add(1500*time.Millisecond), summary))

	runs, err := store.GetAllAnalysisRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, id, run.AnalysisID)
	assert.Equal(t, "run-uuid-1", run.RunUUID)
	assert.True(t, start.Equal(run.StartTime))
	require.NotNil(t, run.EndTime)
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int32(1500), *run.RunDurationMs)
	assert.Equal(t, int32(3), run.TotalReports)
	require.NotNil(t, run.UniqueReports)
	assert.Equal(t, int32(2), *run.UniqueReports)
	require.NotNil(t, run.TotalHours)
	assert.Equal(t, 10.0, *run.TotalHours)
	require.NotNil(t, run.ConfigParams)
	assert.JSONEq(t, `{"workers":4}`, *run.ConfigParams)
	assert.Equal(t, "reports.csv", run.SourceLocation)

	scores, err := store.GetAllReportScores()
	require.NoError(t, err)
	require.Len(t, scores, 3)
	require.NotNil(t, scores[0].Owner)
	assert.Equal(t, "ana", *scores[0].Owner)
	assert.Nil(t, scores[1].Owner)
	assert.Equal(t, int32(2), scores[2].TableCount)
	assert.Equal(t, "Complex", scores[2].ComplexityCategory)

	groups, err := store.GetAllDuplicateGroups()
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Exact", groups[0].GroupType)
	assert.Equal(t, "Orders\nOrders Copy", groups[0].MemberNames)
}

func TestAnalysisStoreGetStatus(t *testing.T) {
	store := newSQLiteAnalysis(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Zero(t, status.TotalRuns)
	assert.Equal(t, int64(0), status.TableSizes[analysisRunsTable])

	first := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	for i := range 2 {
		id, err := store.BeginAnalysis(first.Add(time.Duration(i)*time.Hour), "reports.csv", nil)
		require.NoError(t, err)
		require.NoError(t, store.RecordReportScore(id, sampleAnalyzed()[0]))
		require.NoError(t, store.EndAnalysis(id, first.Add(time.Duration(i)*time.Hour+time.Minute), &schema.AnalysisSummary{ReportCount: 5}))
	}

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalRuns)
	assert.Equal(t, 10, status.TotalReports)
	assert.True(t, first.Add(time.Hour).Equal(status.LastRunTime))
	assert.True(t, first.Equal(status.OldestRunTime))
	assert.Equal(t, int64(2), status.TableSizes[reportScoresTable])
	assert.Equal(t, int64(0), status.TableSizes[duplicateGroupsTable])
}

func TestAnalysisStoreInMemory(t *testing.T) {
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	id, err := store.BeginAnalysis(time.Now(), "inline", nil)
	require.NoError(t, err)
	assert.Positive(t, id)
}

func TestAnalysisStoreEndUnknownRun(t *testing.T) {
	store := newSQLiteAnalysis(t)
	assert.Error(t, store.EndAnalysis(99, time.Now(), nil))
}

func TestAnalysisStorePostgresQueries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	store := newAnalysisStoreWithDB(db, schema.PostgreSQLBackend)
	store.newUUID = func() string { return "u-1" }
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "sqlscope_analysis_runs" (run_uuid, start_time, config_params, source_location) VALUES ($1, $2, $3, $4) RETURNING analysis_id`)).
		WithArgs("u-1", start, "null", "reports.csv").
		WillReturnRows(sqlmock.NewRows([]string{"analysis_id"}).AddRow(int64(7)))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "sqlscope_duplicate_groups"`)).
		WithArgs(int64(7), 0, "Near", 91.5, "A\nB", schema.ConsolidateRecommendation).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT start_time FROM "sqlscope_analysis_runs" WHERE analysis_id = $1`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"start_time"}).AddRow(start))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "sqlscope_analysis_runs" SET end_time = $1, run_duration_ms = $2, total_reports = $3, unique_reports = $4, total_hours = $5 WHERE analysis_id = $6`)).
		WithArgs(start.Add(time.Second), int64(1000), 2, 1, 4.5, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := store.BeginAnalysis(start, "reports.csv", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	require.NoError(t, store.RecordDuplicateGroup(id, 0, schema.DuplicateGroup{
		Type: schema.NearGroup, SimilarityPercent: 91.5, MemberNames: []string{"A", "B"},
		Recommendation: schema.ConsolidateRecommendation,
	}))
	require.NoError(t, store.EndAnalysis(id, start.Add(time.Second),
		&schema.AnalysisSummary{ReportCount: 2, UniqueCount: 1, TotalEstimatedHours: 4.5}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
