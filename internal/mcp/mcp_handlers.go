package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/sqlscope/core"
	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/huangsam/sqlscope/internal/ingest"
	"github.com/huangsam/sqlscope/internal/outwriter"
	"github.com/huangsam/sqlscope/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleAnalyzeSQL(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sql := request.GetString("sql", "")
	if strings.TrimSpace(sql) == "" {
		return mcp.NewToolResultError("sql is required"), nil
	}
	cfg := h.baseCfg.Clone()
	analysis := core.AnalyzeSQLWith(sql, core.OptionsFromConfig(cfg).Weights)
	return jsonResult(analysis), nil
}

func (h *toolHandler) handleCompareSQL(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sqlA := request.GetString("sql_a", "")
	sqlB := request.GetString("sql_b", "")
	if strings.TrimSpace(sqlA) == "" || strings.TrimSpace(sqlB) == "" {
		return mcp.NewToolResultError("sql_a and sql_b are both required"), nil
	}
	cfg := h.baseCfg.Clone()
	result := core.CompareWith(sqlA, sqlB, cfg.ClusterOptions().Weights)
	return jsonResult(result), nil
}

func (h *toolHandler) handleAnalyzeBatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.Output = schema.JSONOut
	cfg.OutputFile = ""
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = min(l, contract.MaxResultLimit)
	}

	records, err := h.batchRecords(cfg, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid batch input: %v", err)), nil
	}

	start := time.Now()
	summary, err := core.AnalyzeRecords(core.WithSuppressHeader(ctx), cfg, records, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	var buf bytes.Buffer
	if err := outwriter.WriteAnalysisResults(&buf, summary, cfg, time.Since(start)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

// batchRecords reads the inventory from input_path, or from the inline reports array.
func (h *toolHandler) batchRecords(cfg *contract.Config, request mcp.CallToolRequest) ([]schema.ReportRecord, error) {
	if p := strings.TrimSpace(request.GetString("input_path", "")); p != "" {
		cfg.InputPath = p
		return ingest.LoadFile(p, "")
	}
	inline := strings.TrimSpace(request.GetString("reports", ""))
	if inline == "" {
		return nil, errors.New("either input_path or reports is required")
	}
	cfg.InputPath = ""
	return ingest.ReadJSON(strings.NewReader(inline))
}

func (h *toolHandler) handleScoringDefinitions(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	defs := core.ScoringDefinitions(core.OptionsFromConfig(cfg), len(cfg.CustomWeights) > 0)
	return jsonResult(defs), nil
}
