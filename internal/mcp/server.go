// Package mcp exposes the resolver's workflow-analysis, search, and
// download-queue operations as Model Context Protocol tools so an AI agent
// can drive dependency resolution directly.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/nodegraph/modelresolver/internal/core"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes the resolver's operations.
type Server struct {
	core *core.Core
	mcp  *server.MCPServer
}

// NewServer creates an MCP server backed by c.
func NewServer(c *core.Core) *Server {
	s := &Server{core: c}

	s.mcp = server.NewMCPServer(
		"modelresolver",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(analyzeWorkflowTool, s.handleAnalyzeWorkflow)
	s.mcp.AddTool(searchArtifactTool, s.handleSearchArtifact)
	s.mcp.AddTool(queueStatusTool, s.handleQueueStatus)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
