// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/codelinehq/codeline/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Codeline MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Codeline Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_file_affinity ---
	s.AddTool(mcp.NewTool("get_file_affinity",
		mcp.WithDescription("Analyze git history to find file pairs that frequently change together."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository (defaults to current directory if not specified).")),
		mcp.WithString("lookback", mcp.Description("Time window for analysis (e.g., '90d', '6m', '1y').")),
		mcp.WithString("exclude", mcp.Description("Comma-separated path fragments to exclude from analysis.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
		mcp.WithNumber("target_nodes", mcp.Description("Visual complexity budget used to tune the affinity cutoff.")),
	), h.handleGetFileAffinity)

	// --- 2. Tool: get_ideal_threshold ---
	s.AddTool(mcp.NewTool("get_ideal_threshold",
		mcp.WithDescription("Tune the affinity score cutoff so the co-change network stays near a target node count."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository.")),
		mcp.WithString("lookback", mcp.Description("Time window for analysis (e.g., '90d', '6m', '1y').")),
		mcp.WithNumber("target_nodes", mcp.Description("Desired number of files in the network."), mcp.Required()),
		mcp.WithNumber("tolerance", mcp.Description("Acceptable deviation from the target node count.")),
	), h.handleGetIdealThreshold)

	// --- 3. Tool: get_timeline ---
	s.AddTool(mcp.NewTool("get_timeline",
		mcp.WithDescription("Extract linear commit chains from git history and stack them into display slots."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository.")),
		mcp.WithString("lookback", mcp.Description("Time window for analysis (e.g., '90d', '6m', '1y').")),
	), h.handleGetTimeline)

	return s
}

// StartMCPServer starts the Codeline MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
