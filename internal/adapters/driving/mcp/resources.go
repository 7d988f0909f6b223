package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for kbrag resources.
	uriScheme = "kbrag://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing stored articles.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "articles",
		Name:        "articles",
		Description: "Curated help-center articles kept by ingest",
		MIMEType:    "application/json",
	}, s.handleArticlesResource)

	// Template for article text.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "articles/{articleId}",
		Name:        "article-content",
		Description: "Normalised plain text of a specific article",
		MIMEType:    "text/plain",
	}, s.handleArticleContentResource)
}

// handleArticlesResource returns the list of stored articles.
func (s *Server) handleArticlesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Articles == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	articles, err := s.ports.Articles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}

	// Build simplified article list.
	type articleInfo struct {
		ID       int64    `json:"id"`
		Title    string   `json:"title"`
		URL      string   `json:"url"`
		Labels   []string `json:"labels"`
		Outdated bool     `json:"outdated"`
		URI      string   `json:"uri"`
	}

	infos := make([]articleInfo, len(articles))
	for i := range articles {
		a := &articles[i]
		labels := a.Labels
		if labels == nil {
			labels = []string{}
		}
		infos[i] = articleInfo{
			ID:       a.ID,
			Title:    a.Title,
			URL:      a.URL,
			Labels:   labels,
			Outdated: a.Outdated,
			URI:      uriScheme + "articles/" + strconv.FormatInt(a.ID, 10),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling articles: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleArticleContentResource returns the text of a specific article.
func (s *Server) handleArticleContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Articles == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract articleId from URI: kbrag://articles/{articleId}
	id, ok := extractArticleID(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	article, err := s.ports.Articles.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting article: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     article.Title + "\n\n" + article.Body,
		}},
	}, nil
}

// extractArticleID extracts the numeric ID from a URI like kbrag://articles/{articleId}.
func extractArticleID(uri string) (int64, bool) {
	const prefix = uriScheme + "articles/"

	if !strings.HasPrefix(uri, prefix) {
		return 0, false
	}

	id, err := strconv.ParseInt(strings.TrimPrefix(uri, prefix), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
