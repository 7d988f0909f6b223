package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
)

// Ensure ArticleStore implements the interface.
var _ driven.ArticleStore = (*ArticleStore)(nil)

// ArticleStore is an in-memory implementation of driven.ArticleStore.
type ArticleStore struct {
	mu       sync.RWMutex
	articles map[int64]domain.CuratedArticle
}

// NewArticleStore creates a new in-memory article store.
func NewArticleStore() *ArticleStore {
	return &ArticleStore{
		articles: make(map[int64]domain.CuratedArticle),
	}
}

// Save stores or replaces an article.
func (s *ArticleStore) Save(_ context.Context, article *domain.CuratedArticle) error {
	if article == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles[article.ID] = *article
	return nil
}

// Get retrieves an article by ID.
func (s *ArticleStore) Get(_ context.Context, id int64) (*domain.CuratedArticle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	article, ok := s.articles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &article, nil
}

// List returns all stored articles ordered by ID.
func (s *ArticleStore) List(_ context.Context) ([]domain.CuratedArticle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.CuratedArticle, 0, len(s.articles))
	for _, a := range s.articles {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Count returns the number of stored articles.
func (s *ArticleStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.articles), nil
}

// Close is a no-op for the memory store.
func (s *ArticleStore) Close() error {
	return nil
}
