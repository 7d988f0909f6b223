package driven

import (
	"context"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

// Normaliser transforms help-center articles into indexable documents.
type Normaliser interface {
	// Normalise converts an article into a document with plain-text Content.
	Normalise(ctx context.Context, article *domain.Article) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Note: Normalisation only produces a Document with Content.
// Chunking is handled by the index service.
type NormaliseResult struct {
	// Document is the normalised document with Content field populated.
	Document domain.Document
}
