package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/sqlscope/internal/contract"
	mcp_internal "github.com/huangsam/sqlscope/internal/mcp"
	"github.com/huangsam/sqlscope/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callTool(t *testing.T, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(&contract.Config{Workers: 1, ResultLimit: 10, Precision: 1}, nil)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		tool    string
		args    map[string]any
		message string
	}{
		{"analyze_sql missing sql", "analyze_sql", map[string]any{"sql": "  "}, "sql is required"},
		{"compare_sql missing sql_b", "compare_sql", map[string]any{"sql_a": "SELECT 1"}, "sql_a and sql_b are both required"},
		{"analyze_batch without input", "analyze_batch", map[string]any{}, "either input_path or reports is required"},
		{"analyze_batch bad json", "analyze_batch", map[string]any{"reports": "{not json"}, "invalid batch input"},
		{"analyze_batch missing file", "analyze_batch", map[string]any{"input_path": "/does/not/exist.csv"}, "invalid batch input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, tt.tool, tt.args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, resultText(t, res), tt.message)
		})
	}
}

func TestMCPAnalyzeSQL(t *testing.T) {
	res := callTool(t, "analyze_sql", map[string]any{
		"sql": "SELECT o.id FROM orders o JOIN customers c ON o.cid = c.id",
	})
	require.False(t, res.IsError)

	var analysis schema.SQLAnalysis
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &analysis))
	assert.Greater(t, analysis.ComplexityScore, 1.0)
	assert.Equal(t, schema.LowRisk, analysis.RiskLevel)
	assert.Len(t, analysis.Lineage.Tables, 2)
}

func TestMCPCompareSQL(t *testing.T) {
	res := callTool(t, "compare_sql", map[string]any{
		"sql_a": "SELECT id FROM t",
		"sql_b": "select  id from t",
	})
	require.False(t, res.IsError)

	var result schema.ComparisonResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &result))
	assert.True(t, result.AreIdentical)
	assert.Equal(t, 100.0, result.SimilarityPercent)
	assert.Equal(t, schema.ExcellentQuality, result.MigrationQuality)
}

func TestMCPAnalyzeBatch(t *testing.T) {
	t.Run("inline reports", func(t *testing.T) {
		res := callTool(t, "analyze_batch", map[string]any{
			"reports": `[
				{"name": "Orders", "owner": "ana", "sql": "SELECT a FROM t"},
				{"name": "Orders Copy", "sql": "select a from t"},
				{"name": "Joined", "sql": "SELECT a FROM t JOIN u ON t.id = u.id"}
			]`,
			"limit": 2.0,
		})
		require.False(t, res.IsError, resultText(t, res))

		var summary schema.AnalysisSummary
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &summary))
		assert.Equal(t, 3, summary.ReportCount)
		assert.Equal(t, 2, summary.UniqueCount)
		assert.Equal(t, 1, summary.DuplicateCount)
		assert.Len(t, summary.TopComplexReports, 2)
		assert.Equal(t, "Joined", summary.TopComplexReports[0].Name)
	})

	t.Run("inventory file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reports.csv")
		csv := "report_name,owner,query_sql\nDaily,ana,SELECT a FROM t\n"
		require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

		res := callTool(t, "analyze_batch", map[string]any{"input_path": path})
		require.False(t, res.IsError, resultText(t, res))

		var summary schema.AnalysisSummary
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &summary))
		assert.Equal(t, 1, summary.ReportCount)
		assert.Equal(t, 1, summary.ReportsByOwner["ana"])
	})
}

func TestMCPScoringDefinitions(t *testing.T) {
	res := callTool(t, "scoring_definitions", map[string]any{})
	require.False(t, res.IsError)

	var defs schema.ScoringDefinitions
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &defs))
	assert.Equal(t, 85.0, defs.NearThreshold)
	assert.Equal(t, 95.0, defs.ConsolidateAt)
	assert.Equal(t, 0.6, defs.TokenWeight)
	assert.False(t, defs.WeightsCustomized)
}
