// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/repoquality/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the repoquality MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Repository Quality Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: analyze_repository ---
	s.AddTool(mcp.NewTool("analyze_repository",
		mcp.WithDescription("Clone one Java repository, extract class-level quality metrics and return its aggregated record."),
		mcp.WithString("full_name", mcp.Description("Repository in owner/name form."), mcp.Required()),
		mcp.WithString("clone_url", mcp.Description("Clone URL (defaults to the GitHub URL for full_name).")),
		mcp.WithNumber("stars", mcp.Description("Star count to record when metadata lookup is disabled.")),
		mcp.WithBoolean("metadata", mcp.Description("Fetch live process attributes from the GitHub API.")),
	), h.handleAnalyzeRepository)

	// --- 2. Tool: correlate_dataset ---
	s.AddTool(mcp.NewTool("correlate_dataset",
		mcp.WithDescription("Trim outliers from a consolidated dataset and correlate process attributes with quality metrics."),
		mcp.WithString("dataset_path", mcp.Description("Path to the consolidated CSV (defaults to the configured dataset).")),
		mcp.WithString("outliers", mcp.Description("Comma separated columns used for IQR outlier removal.")),
	), h.handleCorrelateDataset)

	// --- 3. Tool: describe_dataset ---
	s.AddTool(mcp.NewTool("describe_dataset",
		mcp.WithDescription("Summarize every numeric column of a consolidated dataset."),
		mcp.WithString("dataset_path", mcp.Description("Path to the consolidated CSV (defaults to the configured dataset).")),
	), h.handleDescribeDataset)

	return s
}

// StartMCPServer starts the repoquality MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
