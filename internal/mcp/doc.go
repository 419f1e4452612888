// Package mcp exposes a grid supervisor as Model Context Protocol tools.
//
// Three tools are registered: grid_start, grid_stop and grid_status. Tools
// can be invoked directly through Server.CallTool or served to an MCP client
// over any transport supported by the MCP SDK.
package mcp
