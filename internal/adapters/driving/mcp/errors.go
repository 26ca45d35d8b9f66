// Package mcp provides an MCP (Model Context Protocol) server adapter for procdocs.
// It lets AI assistants search the indexed process documents and ask
// grounded questions about them.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
