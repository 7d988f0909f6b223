// Package chunker splits article text into fixed-size overlapping chunks
// for vector indexing.
package chunker

import (
	"fmt"

	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
)

// Ensure Chunker implements the interface.
var _ driven.Chunker = (*Chunker)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Chunker splits document content into fixed-size chunks.
// Sizes count runes, so multi-byte text is never split mid-character.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a new chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't exceed chunk size
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// ChunkSize returns the configured chunk size.
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// Chunk splits the document content into chunks.
// Chunk IDs are derived from the document ID and position so that
// re-indexing the same document overwrites its previous chunks.
func (c *Chunker) Chunk(doc *domain.Document) []domain.Chunk {
	if doc == nil || doc.Content == "" {
		// Empty content produces no chunks
		return nil
	}

	content := []rune(doc.Content)
	contentLen := len(content)
	step := c.chunkSize - c.overlap

	chunks := make([]domain.Chunk, 0, contentLen/step+1)

	for start, position := 0, 0; start < contentLen; start, position = start+step, position+1 {
		end := start + c.chunkSize
		if end > contentLen {
			end = contentLen
		}

		chunks = append(chunks, domain.Chunk{
			ID:         fmt.Sprintf("%s-%d", doc.ID, position),
			DocumentID: doc.ID,
			Content:    string(content[start:end]),
			Position:   position,
			Metadata:   make(map[string]any),
		})

		// The tail is already covered
		if end == contentLen {
			break
		}
	}

	return chunks
}
