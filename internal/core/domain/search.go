package domain

// QueryType selects the shape of a keyword search query.
type QueryType string

// Supported query types. Unknown values build a boolean should-query.
const (
	QueryMatch      QueryType = "match"
	QueryMultiMatch QueryType = "multi_match"
	QueryVector     QueryType = "vector"
	QueryCustom     QueryType = "custom"
	QueryBool       QueryType = "bool"
)

// DefaultSearchSize is the number of hits returned when no size is given.
const DefaultSearchSize = 10

// SearchRequest is a search against the vector-search service.
type SearchRequest struct {
	Query       string         `json:"query"`
	Index       string         `json:"index,omitempty"`
	Size        int            `json:"size,omitempty"`
	QueryType   QueryType      `json:"query_type,omitempty"`
	Vector      []float32      `json:"vector,omitempty"`
	CustomQuery map[string]any `json:"custom_query,omitempty"`
}

// SearchHit is a single scored document returned by the search service.
type SearchHit struct {
	ID         string              `json:"id"`
	Score      float64             `json:"score"`
	Title      string              `json:"title,omitempty"`
	Content    string              `json:"content,omitempty"`
	Metadata   map[string]any      `json:"metadata,omitempty"`
	Highlights map[string][]string `json:"highlights,omitempty"`
	Source     map[string]any      `json:"source,omitempty"`
}

// SearchResponse is a set of hits plus summary statistics.
type SearchResponse struct {
	TotalHits int         `json:"total_hits"`
	MaxScore  float64     `json:"max_score"`
	Took      int         `json:"took"`
	Hits      []SearchHit `json:"hits"`
}
