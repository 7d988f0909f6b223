package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

// defaultSearchLimit is the number of results returned when none is requested.
const defaultSearchLimit = 10

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query     string `json:"query" jsonschema:"the search query to find help-center articles"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
	QueryType string `json:"query_type,omitempty" jsonschema:"match, multi_match (default), vector or bool"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results   []SearchResultOutput `json:"results"`
	Count     int                  `json:"count"`
	TotalHits int                  `json:"total_hits"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	ID         string              `json:"id"`
	Title      string              `json:"title"`
	URL        string              `json:"url,omitempty"`
	Score      float64             `json:"score"`
	Highlights map[string][]string `json:"highlights,omitempty"`
	Content    string              `json:"content,omitempty"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Query          string `json:"query" jsonschema:"the question to answer from the knowledge base"`
	ConversationID string `json:"conversation_id,omitempty" jsonschema:"conversation to continue"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer         string         `json:"answer"`
	Sources        []SourceOutput `json:"sources"`
	ConversationID string         `json:"conversation_id"`
	InteractionID  string         `json:"interaction_id"`
	ChunkCount     int            `json:"chunk_count"`
}

// SourceOutput is an article used as answer context.
type SourceOutput struct {
	Title string  `json:"title"`
	URL   string  `json:"url,omitempty"`
	Score float64 `json:"score"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the help-center knowledge base",
	}, s.handleSearch)

	if s.ports.Answer != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a question using help-center articles as context",
		}, s.handleAsk)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	resp, err := s.ports.Search.Search(ctx, domain.SearchRequest{
		Query:     input.Query,
		Size:      limit,
		QueryType: domain.QueryType(input.QueryType),
	})
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results:   make([]SearchResultOutput, len(resp.Hits)),
		Count:     len(resp.Hits),
		TotalHits: resp.TotalHits,
	}

	for i := range resp.Hits {
		hit := &resp.Hits[i]
		output.Results[i] = SearchResultOutput{
			ID:         hit.ID,
			Title:      hit.Title,
			URL:        metadataURL(hit.Metadata),
			Score:      hit.Score,
			Highlights: hit.Highlights,
			Content:    hit.Content,
		}
	}

	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Answer.Ask(ctx, domain.AskRequest{
		Query:          input.Query,
		ConversationID: input.ConversationID,
		UserID:         "mcp",
	})
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:         answer.Answer,
		Sources:        make([]SourceOutput, len(answer.ContextSources)),
		ConversationID: answer.ConversationID,
		InteractionID:  answer.InteractionID,
		ChunkCount:     answer.ChunkCount,
	}
	for i, src := range answer.ContextSources {
		output.Sources[i] = SourceOutput{
			Title: src.Title,
			URL:   metadataURL(src.Metadata),
			Score: src.Score,
		}
	}

	return nil, output, nil
}

func metadataURL(metadata map[string]any) string {
	url, _ := metadata["url"].(string)
	return url
}
