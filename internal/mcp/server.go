// ABOUTME: MCP server exposing the workout table to assistants.
// ABOUTME: Every tool and resource is read-only; imports happen through the CLI.
package mcp

import (
	"context"

	"github.com/harperreed/sweat/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with storage access.
type Server struct {
	mcpServer *mcp.Server
	store     storage.Store
}

// NewServer creates a new MCP server over a borrowed store.
func NewServer(store storage.Store, version string) (*Server, error) {
	if version == "" {
		version = "dev"
	}
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "sweat",
			Version: version,
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		store:     store,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
