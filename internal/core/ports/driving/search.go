package driving

import (
	"context"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

// SearchService provides keyword and vector search to external actors.
type SearchService interface {
	// Search builds a query of the requested type and executes it.
	Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error)
}
