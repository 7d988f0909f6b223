package driving

import (
	"context"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

// IngestOptions selects which articles to fetch and how to curate them.
type IngestOptions struct {
	// Query runs a help-center search when set. Otherwise every article
	// in Locale is listed.
	Query string

	// PerPage is the search page size.
	PerPage int

	// Locale restricts the full listing (e.g. "en-us").
	Locale string

	// IncludeRawBody keeps the source HTML on each record.
	IncludeRawBody bool

	// SkipOutdated drops articles flagged outdated upstream.
	SkipOutdated bool

	// SkipDrafts drops unpublished articles.
	SkipDrafts bool

	// Workers bounds concurrent normalisation. Zero means the default.
	Workers int
}

// IngestService fetches, curates and persists help-center articles.
type IngestService interface {
	// Ingest runs one ingest pass and reports what was written.
	Ingest(ctx context.Context, opts IngestOptions) (*domain.IngestStats, error)
}

// IndexService chunks, embeds and indexes curated articles.
type IndexService interface {
	// Index writes the articles into the vector index.
	Index(ctx context.Context, articles []domain.CuratedArticle) (*domain.IndexStats, error)
}

// HealthService reports collaborator reachability.
type HealthService interface {
	// Check pings the vector cluster and the LLM.
	Check(ctx context.Context) domain.HealthStatus
}
