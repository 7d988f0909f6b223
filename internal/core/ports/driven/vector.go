package driven

import (
	"context"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

// VectorSearch queries and feeds a managed vector-search service.
// This is an optional service - when nil, search and answering are disabled.
//
// Note: The service is external. kbrag never stores vectors itself.
type VectorSearch interface {
	// KNN returns the k nearest chunks to vector scoring at least minScore.
	KNN(ctx context.Context, vector []float32, k int, minScore float64) (*domain.SearchResponse, error)

	// Search executes a raw query body against index.
	Search(ctx context.Context, index string, body map[string]any) (*domain.SearchResponse, error)

	// BulkIndex writes chunks into index.
	BulkIndex(ctx context.Context, index string, chunks []domain.IndexedChunk) error

	// DeleteDocument removes every chunk of documentID from index and
	// returns how many were removed.
	DeleteDocument(ctx context.Context, index, documentID string) (int, error)

	// Health returns the cluster health status (green, yellow, red).
	Health(ctx context.Context) (string, error)

	// DefaultIndex returns the configured index name.
	DefaultIndex() string
}
