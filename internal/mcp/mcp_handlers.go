package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/codelinehq/codeline/core"
	"github.com/codelinehq/codeline/internal/contract"
	"github.com/codelinehq/codeline/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// applyCommonArgs copies the shared request parameters into the cloned config.
func (h *toolHandler) applyCommonArgs(cfg *contract.Config, request mcp.CallToolRequest) error {
	if p := request.GetString("repo_path", ""); p != "" {
		cfg.RepoPath = p
	}
	if tn := request.GetInt("target_nodes", 0); tn > 0 {
		if tn > contract.MaxTargetNodes {
			return fmt.Errorf("target_nodes cannot exceed %d (received %d)", contract.MaxTargetNodes, tn)
		}
		cfg.TargetNodes = tn
	}
	return contract.RevalidateLookback(cfg, request.GetString("lookback", ""))
}

func (h *toolHandler) handleGetFileAffinity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := h.applyCommonArgs(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid affinity parameters: %v", err)), nil
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}
	if e := request.GetString("exclude", ""); e != "" {
		for _, p := range strings.Split(e, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				cfg.Excludes = append(cfg.Excludes, trimmed)
			}
		}
	}

	result, err := core.GetAffinityResults(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	view := affinityResponseView(result, cfg.ResultLimit)
	jsonData, _ := json.MarshalIndent(view, "", "  ")

	return mcp.NewToolResultText(string(jsonData)), nil
}

// affinityResponseView returns a value copy of the result with the pair list
// capped at limit. The pointer may be shared with concurrent cache consumers
// and must stay untouched.
func affinityResponseView(result *schema.AffinityResult, limit int) schema.AffinityResult {
	view := *result
	if limit > 0 && len(view.Pairs) > limit {
		view.Pairs = view.Pairs[:limit]
	}
	return view
}

func (h *toolHandler) handleGetIdealThreshold(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if request.GetInt("target_nodes", 0) <= 0 {
		return mcp.NewToolResultError("target_nodes must be at least 1"), nil
	}
	if err := h.applyCommonArgs(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid threshold parameters: %v", err)), nil
	}
	if tol := request.GetInt("tolerance", -1); tol >= 0 {
		cfg.TunerTolerance = tol
	}

	result, err := core.GetAffinityResults(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("threshold tuning failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result.Threshold, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetTimeline(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := h.applyCommonArgs(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid timeline parameters: %v", err)), nil
	}

	result, err := core.GetTimelineResults(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("timeline analysis failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
