package driven

import "github.com/custodia-labs/kbrag/internal/core/domain"

// Chunker splits a document into overlapping chunks for indexing.
type Chunker interface {
	// Chunk returns the chunks of doc in position order.
	Chunk(doc *domain.Document) []domain.Chunk
}
