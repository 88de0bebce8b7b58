package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangsam/repoquality/core"
	"github.com/huangsam/repoquality/internal/contract"
	"github.com/huangsam/repoquality/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

func (h *toolHandler) handleAnalyzeRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fullName := strings.TrimSpace(request.GetString("full_name", ""))
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return mcp.NewToolResultError(fmt.Sprintf("full_name must be in owner/name form, got %q", fullName)), nil
	}

	cfg := h.baseCfg.Clone()
	cfg.Metadata = request.GetBool("metadata", cfg.Metadata)
	desc := schema.RepositoryDescriptor{
		FullName: fullName,
		CloneURL: request.GetString("clone_url", ""),
		Stars:    request.GetInt("stars", 0),
	}

	result, err := core.AnalyzeRepository(ctx, cfg, h.mgr, desc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleCorrelateDataset(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := core.DefaultCorrelateOptions()
	opts.OutlierColumns = h.baseCfg.OutlierColumns
	if o := request.GetString("outliers", ""); o != "" {
		opts.OutlierColumns = contract.SplitList(o)
	}

	rep, err := core.CorrelateFile(h.datasetPath(request), opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("correlation failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(rep, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleDescribeDataset(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	descriptions, err := core.DescribeFile(h.datasetPath(request))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("describe failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(descriptions, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

// datasetPath returns the requested dataset, falling back to the configured one.
func (h *toolHandler) datasetPath(request mcp.CallToolRequest) string {
	if p := request.GetString("dataset_path", ""); p != "" {
		return p
	}
	return h.baseCfg.DatasetPath
}
