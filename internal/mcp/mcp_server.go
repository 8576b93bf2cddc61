// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the sqlscope MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"SQLScope Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	s.AddTool(mcp.NewTool("analyze_sql",
		mcp.WithDescription("Score one SQL query for migration complexity and return its lineage, risk and recommendations."),
		mcp.WithString("sql", mcp.Description("The SQL text to analyze."), mcp.Required()),
	), h.handleAnalyzeSQL)

	s.AddTool(mcp.NewTool("compare_sql",
		mcp.WithDescription("Compare two SQL queries and report similarity, semantic equivalence and clause differences."),
		mcp.WithString("sql_a", mcp.Description("The original SQL text."), mcp.Required()),
		mcp.WithString("sql_b", mcp.Description("The migrated or candidate SQL text."), mcp.Required()),
	), h.handleCompareSQL)

	s.AddTool(mcp.NewTool("analyze_batch",
		mcp.WithDescription("Analyze a report inventory: complexity distribution, effort estimate and duplicate groups."),
		mcp.WithString("input_path", mcp.Description("Path to a CSV, JSON or Parquet inventory file.")),
		mcp.WithString("reports", mcp.Description("Inline JSON array of report objects with name, owner and sql keys. Used when input_path is empty.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of ranked reports returned.")),
	), h.handleAnalyzeBatch)

	s.AddTool(mcp.NewTool("scoring_definitions",
		mcp.WithDescription("Return the active scoring weights, category bands and similarity thresholds."),
	), h.handleScoringDefinitions)

	return s
}

// StartMCPServer starts the sqlscope MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
