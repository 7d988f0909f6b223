package driven

import (
	"context"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

// RecordWriter appends records to a line-delimited JSON sink.
type RecordWriter interface {
	// Write appends one record.
	Write(v any) error

	// Close flushes buffered records and releases the sink.
	Close() error
}

// RecordReader reads records from a line-delimited JSON source.
type RecordReader interface {
	// Next decodes the next record into v. Returns io.EOF at the end.
	Next(v any) error

	// Close releases the source.
	Close() error
}

// ArticleStore persists curated articles.
// Backed by SQLite.
type ArticleStore interface {
	// Save stores or replaces an article by ID.
	Save(ctx context.Context, article *domain.CuratedArticle) error

	// Get retrieves an article by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id int64) (*domain.CuratedArticle, error)

	// List returns all stored articles ordered by ID.
	List(ctx context.Context) ([]domain.CuratedArticle, error)

	// Count returns the number of stored articles.
	Count(ctx context.Context) (int, error)

	// Close releases the underlying database.
	Close() error
}

// ObjectStore stores opaque objects under hierarchical keys.
type ObjectStore interface {
	// Put writes data under key, replacing any existing object.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Get reads the object under key.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
}

// InteractionStore archives answered questions for later analysis.
// This is an optional service - when nil, interactions are not stored.
type InteractionStore interface {
	// SaveInteraction stores an interaction and returns its object key.
	SaveInteraction(ctx context.Context, in *domain.Interaction) (string, error)
}
