package driven

import (
	"context"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

// HelpCenter fetches articles from a help-desk knowledge base.
type HelpCenter interface {
	// SearchArticles runs a full-text article search and returns one page.
	SearchArticles(ctx context.Context, query string, perPage int) (*domain.ArticlePage, error)

	// ListArticles returns one page of articles for a locale.
	// An empty page starts from the first page; otherwise page is the
	// next_page URL returned by a previous call.
	ListArticles(ctx context.Context, locale, page string) (*domain.ArticlePage, error)

	// AllArticles streams every article for a locale, following pagination.
	// Both channels are closed when iteration completes.
	AllArticles(ctx context.Context, locale string) (<-chan domain.Article, <-chan error)
}
