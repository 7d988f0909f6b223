// Package mcp provides an MCP (Model Context Protocol) server adapter for kbrag.
// It lets AI assistants ask questions of, and search, the help-center knowledge base.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
