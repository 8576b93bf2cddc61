package core

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/huangsam/sqlscope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func TestExecuteAnalyze(t *testing.T) {
	inventory := writeInventory(t, "report_name,owner,query_sql\n"+
		"Orders,alice,SELECT a FROM t\n"+
		"Orders Copy,alice,SELECT a FROM t\n"+
		"Joined,bob,SELECT a FROM t JOIN u ON t.id = u.id\n")
	out := filepath.Join(t.TempDir(), "summary.json")
	cfg := &contract.Config{
		InputPath:  inventory,
		Output:     schema.JSONOut,
		OutputFile: out,
		Workers:    2,
	}

	require.NoError(t, ExecuteAnalyze(WithSuppressHeader(context.Background()), cfg, noStores()))

	var got struct {
		ReportCount    int `json:"report_count"`
		UniqueCount    int `json:"unique_count"`
		DuplicateCount int `json:"duplicate_count"`
		Reports        []struct {
			Rank int    `json:"rank"`
			Name string `json:"name"`
		} `json:"reports"`
	}
	readJSON(t, out, &got)
	assert.Equal(t, 3, got.ReportCount)
	assert.Equal(t, 2, got.UniqueCount)
	assert.Equal(t, 1, got.DuplicateCount)
	require.Len(t, got.Reports, 3)
	assert.Equal(t, "Joined", got.Reports[0].Name)
}

func TestExecuteAnalyzeMissingFile(t *testing.T) {
	cfg := &contract.Config{InputPath: filepath.Join(t.TempDir(), "nope.csv")}
	err := ExecuteAnalyze(context.Background(), cfg, noStores())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load reports")
}

func TestExecuteCompare(t *testing.T) {
	out := filepath.Join(t.TempDir(), "compare.json")
	cfg := &contract.Config{Output: schema.JSONOut, OutputFile: out}

	require.NoError(t, ExecuteCompare(context.Background(), cfg, "SELECT id FROM t", "select  id from t"))

	var got schema.ComparisonResult
	readJSON(t, out, &got)
	assert.True(t, got.AreIdentical)
	assert.Equal(t, 100.0, got.SimilarityPercent)
	assert.Equal(t, schema.ExcellentQuality, got.MigrationQuality)
}

func TestExecuteInspect(t *testing.T) {
	out := filepath.Join(t.TempDir(), "inspect.json")
	cfg := &contract.Config{Output: schema.JSONOut, OutputFile: out}

	require.NoError(t, ExecuteInspect(context.Background(), cfg, "SELECT NVL(a, 0) FROM t"))

	var got schema.SQLAnalysis
	readJSON(t, out, &got)
	assert.Equal(t, schema.LowRisk, got.RiskLevel)
	assert.Equal(t, []string{"T"}, got.Lineage.Tables)
	assert.Contains(t, got.Recommendations, "Replace NVL with COALESCE or ISNULL")
}

func TestExecuteMetrics(t *testing.T) {
	out := filepath.Join(t.TempDir(), "metrics.json")
	cfg := &contract.Config{
		Output:        schema.JSONOut,
		OutputFile:    out,
		CustomWeights: map[schema.BreakdownKey]float64{schema.BreakdownJoin: 4},
	}

	require.NoError(t, ExecuteMetrics(context.Background(), cfg, nil))

	var got schema.ScoringDefinitions
	readJSON(t, out, &got)
	assert.True(t, got.WeightsCustomized)
	assert.Equal(t, 85.0, got.NearThreshold)
	assert.Equal(t, 0.6, got.TokenWeight)
}
