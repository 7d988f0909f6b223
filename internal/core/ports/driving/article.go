package driving

import (
	"context"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

// ArticleService reads curated articles kept by ingest.
type ArticleService interface {
	// List returns all stored articles ordered by ID.
	List(ctx context.Context) ([]domain.CuratedArticle, error)

	// Get returns one article. Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id int64) (*domain.CuratedArticle, error)
}
