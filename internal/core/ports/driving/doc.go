// Package driving holds the interfaces the CLI and the MCP server call
// into: queries, batches, scheme discovery and settings. The
// implementations live in internal/core/services.
package driving
