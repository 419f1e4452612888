package seleniumgrid

// Version is the library version reported to MCP clients and by gridctl.
const Version = "0.3.0"
