package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nodegraph/modelresolver/internal/registry"
	"github.com/nodegraph/modelresolver/internal/workflow"
)

// handleAnalyzeWorkflow extracts and matches a workflow's artifacts against
// the local inventory.
func (s *Server) handleAnalyzeWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("workflow_json")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: workflow_json"), nil
	}

	refs, err := s.core.Analyze([]byte(raw), nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analyzing workflow: %v", err)), nil
	}

	if err := s.core.Inventory.Index(s.core.Config.Paths.ModelsRoot); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("indexing models root: %v", err)), nil
	}
	results := s.core.Match(refs)

	encoded, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(encoded)), nil
}

// handleSearchArtifact searches the routed catalogs for a single artifact.
func (s *Server) handleSearchArtifact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename, err := request.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: filename"), nil
	}
	kind := registry.Kind(request.GetString("kind", string(registry.KindUnknown)))

	cand := s.core.Search(ctx, workflow.ArtifactRef{Filename: filename, Kind: kind})
	if len(cand.Hits) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No candidates found for %q.", filename)), nil
	}

	encoded, err := json.MarshalIndent(cand, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(encoded)), nil
}

// handleQueueStatus reports the download manager's current queue state.
func (s *Server) handleQueueStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.core.Downloads.Status()
	encoded, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding status: %v", err)), nil
	}
	return mcp.NewToolResultText(string(encoded)), nil
}
