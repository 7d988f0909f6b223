package html

import (
	"context"
	"strconv"

	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser converts help-center articles into plain-text documents.
type Normaliser struct {
	cleaner *Cleaner
}

// New creates a new article normaliser. Options configure its Cleaner.
func New(opts ...Option) *Normaliser {
	return &Normaliser{cleaner: NewCleaner(opts...)}
}

// Normalise converts an article to a normalised document.
// The Content field contains the cleaned body text.
// Chunking is handled by the index service.
func (n *Normaliser) Normalise(_ context.Context, article *domain.Article) (*driven.NormaliseResult, error) {
	if article == nil {
		return nil, domain.ErrInvalidInput
	}

	labels := make([]string, len(article.LabelNames))
	copy(labels, article.LabelNames)

	doc := domain.Document{
		ID:      strconv.FormatInt(article.ID, 10),
		URI:     article.HTMLURL,
		Title:   article.Title,
		Content: n.cleaner.Clean(article.Body),
		Metadata: map[string]any{
			"labels":     labels,
			"url":        article.HTMLURL,
			"updated_at": article.UpdatedAt,
			"outdated":   article.Outdated,
			"format":     "html",
		},
		UpdatedAt: article.UpdatedAt,
	}
	if article.Locale != "" {
		doc.Metadata["locale"] = article.Locale
	}

	return &driven.NormaliseResult{
		Document: doc,
	}, nil
}
