package mcp

import (
	"github.com/custodia-labs/kbrag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides keyword and vector search.
	Search driving.SearchService

	// Answer answers questions with retrieved context. Optional; the ask
	// tool is only registered when set.
	Answer driving.AnswerService

	// Articles reads stored curated articles. Optional.
	Articles driving.ArticleService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
