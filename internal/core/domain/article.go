package domain

import "time"

// Article mirrors a help-center article record as returned by the upstream API.
type Article struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	HTMLURL    string    `json:"html_url"`
	Body       string    `json:"body"`
	Locale     string    `json:"locale"`
	LabelNames []string  `json:"label_names"`
	Outdated   bool      `json:"outdated"`
	Draft      bool      `json:"draft"`
	SectionID  int64     `json:"section_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ArticlePage is one page of a paginated article listing or search.
type ArticlePage struct {
	Articles     []Article `json:"articles"`
	Count        int       `json:"count"`
	Page         int       `json:"page"`
	PageCount    int       `json:"page_count"`
	PerPage      int       `json:"per_page"`
	NextPage     string    `json:"next_page"`
	PreviousPage string    `json:"previous_page"`
}

// HasNext reports whether another page follows this one.
func (p *ArticlePage) HasNext() bool {
	return p != nil && p.NextPage != ""
}

// CuratedArticle is the cleaned record persisted as line-delimited JSON.
// Body holds normalised plain text; RawBody keeps the source HTML when requested.
type CuratedArticle struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	UpdatedAt time.Time `json:"updated_at"`
	Outdated  bool      `json:"outdated"`
	Labels    []string  `json:"labels"`
	Body      string    `json:"body"`
	RawBody   string    `json:"raw_body,omitempty"`
}

// IngestStats summarises an ingest run.
type IngestStats struct {
	Fetched int `json:"fetched"`
	Written int `json:"written"`
	Skipped int `json:"skipped"`
}

// IndexStats summarises an index run.
type IndexStats struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
	Skipped   int `json:"skipped"`
	// Removed counts stale chunks deleted before re-indexing.
	Removed int `json:"removed"`
}
