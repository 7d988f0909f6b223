// Package domain defines the core business entities for kbrag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Article: A help-center record as returned by the upstream API
//   - CuratedArticle: The cleaned record persisted as line-delimited JSON
//   - Document / Chunk: A curated article prepared for vector indexing
//   - SearchHit / SearchResponse: Results from the vector-search service
//   - Answer / Interaction: A retrieval-augmented answer and its audit record
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
