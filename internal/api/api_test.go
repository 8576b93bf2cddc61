package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/huangsam/sqlscope/internal/iocache"
	"github.com/huangsam/sqlscope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(mgr contract.CacheManager) *Server {
	return NewServer(&contract.Config{Workers: 2, ResultLimit: 10, Precision: 1}, mgr)
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	rec := do(t, newTestServer(nil), http.MethodGet, EndPointHealth, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"sqlscope"}`, rec.Body.String())
}

func TestScoring(t *testing.T) {
	rec := do(t, newTestServer(nil), http.MethodGet, EndPointScoring, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var defs schema.ScoringDefinitions
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &defs))
	assert.Equal(t, 1.0, defs.BaseScore)
	assert.Equal(t, 85.0, defs.NearThreshold)
	assert.Len(t, defs.Categories, 4)
}

func TestAnalyze(t *testing.T) {
	t.Run("ranked summary", func(t *testing.T) {
		body := AnalyzeRequest{Reports: []schema.ReportRecord{
			{Name: "Orders", Owner: "ana", SQLText: "SELECT a FROM t"},
			{Name: "Orders Copy", SQLText: "select a from t"},
			{Name: "Joined", SQLText: "SELECT a FROM t JOIN u ON t.id = u.id"},
		}}
		rec := do(t, newTestServer(nil), http.MethodPost, EndPointAnalyze, body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

		var out struct {
			ReportCount     int                     `json:"report_count"`
			DuplicateCount  int                     `json:"duplicate_count"`
			DuplicateGroups []schema.DuplicateGroup `json:"duplicate_groups"`
			Reports         []schema.EnrichedReport `json:"reports"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		assert.Equal(t, 3, out.ReportCount)
		assert.Equal(t, 1, out.DuplicateCount)
		require.Len(t, out.DuplicateGroups, 1)
		assert.Equal(t, []string{"0", "1"}, out.DuplicateGroups[0].MemberIDs)
		require.Len(t, out.Reports, 3)
		assert.Equal(t, "Joined", out.Reports[0].Name)
		assert.Equal(t, 1, out.Reports[0].Rank)
	})

	t.Run("empty batch", func(t *testing.T) {
		rec := do(t, newTestServer(nil), http.MethodPost, EndPointAnalyze, `{"reports": []}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"report_count": 0`)
	})

	t.Run("missing reports", func(t *testing.T) {
		rec := do(t, newTestServer(nil), http.MethodPost, EndPointAnalyze, `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "report records are required")
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := do(t, newTestServer(nil), http.MethodPost, EndPointAnalyze, `{"reports":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("uses report cache", func(t *testing.T) {
		store := &iocache.MockCacheStore{}
		store.On("Get", mock.Anything).Return(nil, 0, int64(0), assert.AnError)
		store.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		mgr := &iocache.MockCacheManager{}
		mgr.On("GetReportStore").Return(store)
		mgr.On("GetAnalysisStore").Return(nil)

		body := AnalyzeRequest{Reports: []schema.ReportRecord{{Name: "One", SQLText: "SELECT 1"}}}
		rec := do(t, newTestServer(mgr), http.MethodPost, EndPointAnalyze, body)
		require.Equal(t, http.StatusOK, rec.Code)
		store.AssertCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCompare(t *testing.T) {
	rec := do(t, newTestServer(nil), http.MethodPost, EndPointCompare, `{"sql_a":"SELECT id FROM t","sql_b":"select  id from t"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result schema.ComparisonResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.AreIdentical)
	assert.Equal(t, 100, result.CompatibilityScore)

	rec = do(t, newTestServer(nil), http.MethodPost, EndPointCompare, `{"sql_a":"SELECT 1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, newTestServer(nil), http.MethodPost, EndPointCompare, `{"sql_a":"","sql_b":""}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result = schema.ComparisonResult{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.AreIdentical)
	assert.Equal(t, 100.0, result.SimilarityPercent)
}

func TestInspect(t *testing.T) {
	rec := do(t, newTestServer(nil), http.MethodPost, EndPointInspect, InspectRequest{SQL: "SELECT NVL(a, 0) FROM t"})
	require.Equal(t, http.StatusOK, rec.Code)

	var analysis schema.SQLAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.Equal(t, schema.LowRisk, analysis.RiskLevel)
	assert.Equal(t, []string{"T"}, analysis.Lineage.Tables)
	assert.Contains(t, analysis.Recommendations, "Replace NVL with COALESCE or ISNULL")

	rec = do(t, newTestServer(nil), http.MethodPost, EndPointInspect, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
