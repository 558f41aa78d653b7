// Package mcp exposes document search and question answering as MCP tools
// over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/docchat/docchat/internal/chat"
	"github.com/docchat/docchat/internal/ingest"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes document chat tools.
type Server struct {
	engine   *chat.Engine
	registry *ingest.Store
	mcp      *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(engine *chat.Engine, registry *ingest.Store) *Server {
	s := &Server{
		engine:   engine,
		registry: registry,
	}

	s.mcp = server.NewMCPServer(
		"docchat",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchDocumentsTool, s.handleSearchDocuments)
	s.mcp.AddTool(askDocumentsTool, s.handleAskDocuments)
	s.mcp.AddTool(listDocumentsTool, s.handleListDocuments)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
