package seleniumgrid

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	internalmcp "github.com/wagiedev/selenium-grid-go/internal/mcp"
)

// MCP tool names.
const (
	MCPToolStart  = internalmcp.ToolStart
	MCPToolStop   = internalmcp.ToolStop
	MCPToolStatus = internalmcp.ToolStatus
)

// MCPStatus is the payload returned by the grid_status tool.
type MCPStatus = internalmcp.Status

// NewMCPServer returns an MCP server exposing grid_start, grid_stop and
// grid_status for grid. Arguments missing from grid_start fall back to
// defaults.
func NewMCPServer(grid Supervisor, defaults LaunchConfig) *mcp.Server {
	return internalmcp.NewGridServer(grid, defaults, Version).Server()
}

// ServeMCP serves the grid tools over stdin and stdout until ctx is done or
// the client disconnects.
func ServeMCP(ctx context.Context, grid Supervisor, defaults LaunchConfig) error {
	return NewMCPServer(grid, defaults).Run(ctx, &mcp.StdioTransport{})
}
