package services

import (
	"context"

	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
	"github.com/custodia-labs/kbrag/internal/core/ports/driving"
)

// Ensure ArticleService implements the interface.
var _ driving.ArticleService = (*ArticleService)(nil)

// ArticleService exposes the article store to driving adapters.
type ArticleService struct {
	store driven.ArticleStore
}

// NewArticleService creates a new article service.
func NewArticleService(store driven.ArticleStore) *ArticleService {
	return &ArticleService{store: store}
}

// List returns all stored articles ordered by ID.
func (s *ArticleService) List(ctx context.Context) ([]domain.CuratedArticle, error) {
	if s.store == nil {
		return []domain.CuratedArticle{}, nil
	}
	return s.store.List(ctx)
}

// Get returns one article.
func (s *ArticleService) Get(ctx context.Context, id int64) (*domain.CuratedArticle, error) {
	if s.store == nil {
		return nil, domain.ErrNotFound
	}
	return s.store.Get(ctx, id)
}
