package mcp_test

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelinehq/codeline/internal/contract"
	mcp_internal "github.com/codelinehq/codeline/internal/mcp"
)

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	baseCfg := &contract.Config{
		RepoPath:    ".",
		ResultLimit: 25,
		TargetNodes: 15,
	}

	// Create a dummy manager, though we shouldn't hit it because we test validation errors
	var mgr contract.CacheManager
	s := mcp_internal.NewMCPServer(baseCfg, mgr)

	ctx := context.Background()

	t.Run("get_file_affinity invalid lookback", func(t *testing.T) {
		tool := s.GetTool("get_file_affinity")
		require.NotNil(t, tool, "Tool get_file_affinity should exist")

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "get_file_affinity",
				Arguments: map[string]any{
					"lookback": "not_a_lookback", // Invalid
				},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "invalid lookback")
	})

	t.Run("get_ideal_threshold missing target_nodes", func(t *testing.T) {
		tool := s.GetTool("get_ideal_threshold")
		require.NotNil(t, tool, "Tool get_ideal_threshold should exist")

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "get_ideal_threshold",
				Arguments: map[string]any{
					"target_nodes": 0.0, // Invalid
				},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "target_nodes must be at least 1")
	})

	t.Run("get_ideal_threshold target_nodes too large", func(t *testing.T) {
		tool := s.GetTool("get_ideal_threshold")
		require.NotNil(t, tool)

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "get_ideal_threshold",
				Arguments: map[string]any{
					"target_nodes": 100000.0, // Invalid
				},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "target_nodes cannot exceed")
	})

	t.Run("get_timeline invalid lookback", func(t *testing.T) {
		tool := s.GetTool("get_timeline")
		require.NotNil(t, tool, "Tool get_timeline should exist")

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "get_timeline",
				Arguments: map[string]any{
					"lookback": "0d", // Invalid
				},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "invalid lookback")
	})
}
