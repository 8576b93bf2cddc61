package core

import (
	"context"
	"fmt"
	"testing"

	"github.com/huangsam/sqlscope/core/algo"
	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/huangsam/sqlscope/internal/iocache"
	"github.com/huangsam/sqlscope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func records(sqls ...string) []schema.ReportRecord {
	out := make([]schema.ReportRecord, len(sqls))
	for i, sql := range sqls {
		out[i] = schema.ReportRecord{
			ID:      fmt.Sprintf("r%d", i+1),
			Name:    fmt.Sprintf("report_%d", i+1),
			SQLText: sql,
		}
	}
	return out
}

func TestAnalyzeReport(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		score    float64
		category schema.Category
		hours    float64
		tables   []string
	}{
		{"simple select", "SELECT a FROM t", 1.0, schema.SimpleCategory, 0.5, []string{"T"}},
		{"one join", "SELECT a FROM t JOIN u ON t.id = u.id", 3.0, schema.SimpleCategory, 1.5, []string{"T", "U"}},
		{"subquery with aggregate", "SELECT SUM(x) FROM (SELECT x FROM t) s", 6.0, schema.MediumCategory, 3.0, []string{"T"}},
		{"empty text", "", 1.0, schema.SimpleCategory, 0.5, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := schema.ReportRecord{ID: "1", Name: "r", Owner: "ana", SQLText: tt.sql}
			r := AnalyzeReport(rec, algo.DefaultWeights())

			assert.Equal(t, "1", r.ID)
			assert.Equal(t, "r", r.Name)
			assert.Equal(t, "ana", r.Owner)
			assert.Equal(t, tt.sql, r.SQLText)
			assert.Equal(t, tt.score, r.ComplexityScore)
			assert.Equal(t, tt.category, r.ComplexityCategory)
			assert.Equal(t, tt.hours, r.EstimatedHours)
			assert.Equal(t, tt.tables, r.ReferencedTables)
		})
	}
}

func TestAnalyzeReportFingerprint(t *testing.T) {
	w := algo.DefaultWeights()
	a := AnalyzeReport(schema.ReportRecord{SQLText: "SELECT * FROM t WHERE id=5"}, w)
	b := AnalyzeReport(schema.ReportRecord{SQLText: "SELECT *\nFROM t\nWHERE id = 42"}, w)
	empty := AnalyzeReport(schema.ReportRecord{SQLText: "-- nothing"}, w)

	assert.Equal(t, "SELECT * FROM t WHERE id = ?", a.NormalizedSQL)
	assert.Equal(t, a.Fingerprint, b.Fingerprint)
	assert.Len(t, a.Fingerprint, 64)
	assert.Equal(t, "", empty.NormalizedSQL)
	assert.Equal(t, "", empty.Fingerprint)
	assert.Equal(t, schema.StructuredTier, a.Tokenizer)
}

func TestAnalyzeBatchNilRecords(t *testing.T) {
	_, err := AnalyzeBatch(context.Background(), nil, DefaultOptions())
	assert.ErrorIs(t, err, ErrNilRecords)
}

func TestAnalyzeBatchEmpty(t *testing.T) {
	summary, err := AnalyzeBatch(context.Background(), []schema.ReportRecord{}, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.ReportCount)
	assert.Equal(t, 0, summary.UniqueCount)
	assert.Equal(t, 0, summary.DuplicateCount)
	assert.Equal(t, 0.0, summary.TotalEstimatedHours)
	assert.Equal(t, 0.0, summary.AvgComplexity)
	assert.Empty(t, summary.DuplicateGroups)
	assert.Empty(t, summary.TopComplexReports)
	assert.Empty(t, summary.Reports)
}

func TestTotalsRoundHalfEven(t *testing.T) {
	reports := []schema.AnalyzedReport{
		{ComplexityScore: 1, EstimatedHours: 1},
		{ComplexityScore: 2, EstimatedHours: 0.5},
		{ComplexityScore: 3, EstimatedHours: 0.5},
		{ComplexityScore: 3, EstimatedHours: 0.25},
	}
	hours, avg := totals(reports)
	assert.Equal(t, 2.2, hours)
	assert.Equal(t, 2.2, avg)

	_, avg = totals([]schema.AnalyzedReport{{ComplexityScore: 1}, {ComplexityScore: 4.5}})
	assert.Equal(t, 2.8, avg)
}

func TestAnalyzeBatchSummary(t *testing.T) {
	recs := records(
		"SELECT * FROM t WHERE id=5",
		"SELECT *\nFROM t\nWHERE id = 42",
		"SELECT a FROM t JOIN u ON t.id = u.id",
	)
	recs[0].Owner = "alice"
	recs[2].Owner = " alice "

	summary, err := AnalyzeBatch(context.Background(), recs, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.ReportCount)
	assert.Equal(t, 2, summary.UniqueCount)
	assert.Equal(t, 1, summary.DuplicateCount)
	assert.Equal(t, map[schema.Category]int{schema.SimpleCategory: 3}, summary.ComplexityDistribution)
	assert.Equal(t, 2.5, summary.TotalEstimatedHours)
	assert.Equal(t, 1.7, summary.AvgComplexity)
	assert.Equal(t, map[string]int{"alice": 2, schema.UnknownOwner: 1}, summary.ReportsByOwner)

	require.Len(t, summary.DuplicateGroups, 1)
	g := summary.DuplicateGroups[0]
	assert.Equal(t, schema.ExactGroup, g.Type)
	assert.Equal(t, []string{"report_1", "report_2"}, g.MemberNames)

	require.Len(t, summary.TopComplexReports, 3)
	assert.Equal(t, "report_3", summary.TopComplexReports[0].Name)
	assert.Equal(t, "report_1", summary.TopComplexReports[1].Name)
	assert.Equal(t, "report_2", summary.TopComplexReports[2].Name)

	assert.Equal(t, schema.PotentialSavings{ReportsToSkip: 1, HoursSaved: 0.5}, summary.PotentialSavings)
}

func TestAnalyzeBatchAddedJoinKeyword(t *testing.T) {
	recs := records(
		"SELECT id FROM orders items",
		"SELECT id FROM orders items",
		"SELECT id FROM orders JOIN items",
	)
	summary, err := AnalyzeBatch(context.Background(), recs, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, summary.DuplicateGroups, 1)
	assert.Equal(t, schema.ExactGroup, summary.DuplicateGroups[0].Type)
	assert.Equal(t, 2, summary.UniqueCount)
	assert.Equal(t, 1, summary.DuplicateCount)
}

func TestAnalyzeBatchTopN(t *testing.T) {
	sqls := make([]string, 15)
	for i := range sqls {
		sqls[i] = fmt.Sprintf("SELECT c%d FROM t%d", i, i)
	}
	opts := DefaultOptions()
	opts.TopN = 0

	summary, err := AnalyzeBatch(context.Background(), records(sqls...), opts)
	require.NoError(t, err)
	assert.Len(t, summary.TopComplexReports, DefaultTopN)

	opts.TopN = 3
	summary, err = AnalyzeBatch(context.Background(), records(sqls...), opts)
	require.NoError(t, err)
	assert.Len(t, summary.TopComplexReports, 3)
}

func TestAnalyzeBatchWorkersDeterministic(t *testing.T) {
	sqls := []string{
		"SELECT a, b FROM orders WHERE x = 1",
		"SELECT a, b FROM orders WHERE x = 2",
		"SELECT a, c FROM orders WHERE x = 1",
		"WITH c AS (SELECT 1) SELECT * FROM c",
		"SELECT COUNT(*) FROM t GROUP BY a",
		"",
		"SELECT a FROM t UNION SELECT a FROM u",
	}

	base := DefaultOptions()
	want, err := AnalyzeBatch(context.Background(), records(sqls...), base)
	require.NoError(t, err)

	for _, workers := range []int{2, 4, 8} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			opts := base
			opts.Workers = workers
			opts.Cluster.Workers = workers
			got, err := AnalyzeBatch(context.Background(), records(sqls...), opts)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestAnalyzeBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := AnalyzeBatch(ctx, records("SELECT a FROM t", "SELECT b FROM u"), DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPotentialSavings(t *testing.T) {
	reports := []schema.AnalyzedReport{
		{EstimatedHours: 1.5},
		{EstimatedHours: 1.5},
		{EstimatedHours: 2.0},
		{EstimatedHours: 4.0},
		{EstimatedHours: 4.5},
	}
	groups := []schema.DuplicateGroup{
		{Type: schema.ExactGroup, Members: []int{0, 1, 2}},
		{Type: schema.NearGroup, Members: []int{3, 4}},
		{Type: schema.ExactGroup, Members: []int{3}},
	}

	savings := PotentialSavings(reports, groups)
	assert.Equal(t, 3, savings.ReportsToSkip)
	assert.Equal(t, 8.0, savings.HoursSaved)
}

func TestOptionsFromConfig(t *testing.T) {
	t.Run("zero config keeps defaults", func(t *testing.T) {
		opts := OptionsFromConfig(&contract.Config{})
		assert.Equal(t, 1, opts.Workers)
		assert.Equal(t, DefaultTopN, opts.TopN)
		assert.Equal(t, algo.DefaultWeights(), opts.Weights)
		assert.Equal(t, 85.0, opts.Cluster.NearThreshold)
	})

	t.Run("custom values", func(t *testing.T) {
		w := algo.DefaultWeights().WithOverrides(map[schema.BreakdownKey]float64{schema.BreakdownJoin: 4})
		opts := OptionsFromConfig(&contract.Config{Workers: 3, ResultLimit: 5, Weights: w, NearThreshold: 90})
		assert.Equal(t, 3, opts.Workers)
		assert.Equal(t, 5, opts.TopN)
		assert.Equal(t, 4.0, opts.Weights.Join)
		assert.Equal(t, 90.0, opts.Cluster.NearThreshold)
		assert.Equal(t, 3, opts.Cluster.Workers)
	})
}

func TestRunAnalysisCoreWithoutStores(t *testing.T) {
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetReportStore").Return(nil)
	mgr.On("GetAnalysisStore").Return(nil)

	ctx := WithSuppressHeader(context.Background())
	summary, err := runAnalysisCore(ctx, &contract.Config{}, records("SELECT a FROM t"), mgr)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ReportCount)
	mgr.AssertExpectations(t)
}

func TestRunAnalysisCoreNilManager(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	summary, err := runAnalysisCore(ctx, &contract.Config{}, records("SELECT a FROM t"), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ReportCount)
}

func TestRunAnalysisCoreTracksRun(t *testing.T) {
	store := &iocache.MockAnalysisStore{}
	store.On("BeginAnalysis", mock.Anything, "reports.csv", mock.Anything).Return(int64(7), nil)
	store.On("RecordReportScore", int64(7), mock.Anything).Return(nil).Times(3)
	store.On("RecordDuplicateGroup", int64(7), 0, mock.MatchedBy(func(g schema.DuplicateGroup) bool {
		return g.Type == schema.ExactGroup
	})).Return(nil).Once()
	store.On("EndAnalysis", int64(7), mock.Anything, mock.MatchedBy(func(s *schema.AnalysisSummary) bool {
		return s.ReportCount == 3
	})).Return(nil).Once()

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetReportStore").Return(nil)
	mgr.On("GetAnalysisStore").Return(store)

	cfg := &contract.Config{InputPath: "reports.csv"}
	ctx := WithSuppressHeader(context.Background())
	recs := records("SELECT a FROM t WHERE x = 1", "SELECT a FROM t WHERE x = 2", "SELECT b FROM u")

	summary, err := runAnalysisCore(ctx, cfg, recs, mgr)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.ReportCount)
	store.AssertExpectations(t)
}

func TestRunAnalysisCoreTrackingFailureIsNotFatal(t *testing.T) {
	store := &iocache.MockAnalysisStore{}
	store.On("BeginAnalysis", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), assert.AnError)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetReportStore").Return(nil)
	mgr.On("GetAnalysisStore").Return(store)

	ctx := WithSuppressHeader(context.Background())
	summary, err := runAnalysisCore(ctx, &contract.Config{}, records("SELECT a FROM t"), mgr)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ReportCount)
	store.AssertNotCalled(t, "EndAnalysis", mock.Anything, mock.Anything, mock.Anything)
}
