package domain

import "time"

// Document represents a curated article prepared for indexing.
// It is the canonical representation after normalisation.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// URI is the public location of the article.
	URI string

	// Title is the human-readable title.
	Title string

	// Content is the full text content after normalisation.
	// This is the complete document text before chunking.
	Content string

	// Metadata contains arbitrary key-value pairs (labels, outdated, ...).
	Metadata map[string]any

	// UpdatedAt is when the article was last updated upstream.
	UpdatedAt time.Time
}

// Chunk represents a searchable unit within a document.
// Documents are split into chunks for granular retrieval.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Embedding is the vector representation for semantic search.
	Embedding []float32

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any
}

// IndexedChunk is a chunk together with the document fields the
// vector index stores alongside it.
type IndexedChunk struct {
	Chunk
	Title     string
	Timestamp time.Time
}
