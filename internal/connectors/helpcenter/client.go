package helpcenter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
	"github.com/custodia-labs/kbrag/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.HelpCenter = (*Client)(nil)

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 512

// Client talks to the help-center REST API.
type Client struct {
	cfg         Config
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewClient creates a new help-center client.
func NewClient(cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.OAuthToken != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.OAuthToken})
		httpClient = oauth2.NewClient(ctx, ts)
		httpClient.Timeout = cfg.Timeout
	}

	return &Client{
		cfg:         cfg,
		httpClient:  httpClient,
		rateLimiter: NewRateLimiter(cfg.RequestsPerSecond),
	}, nil
}

// articlePage is the wire shape shared by search and listing responses.
// Search returns hits under "results", listings under "articles".
type articlePage struct {
	Results      []domain.Article `json:"results"`
	Articles     []domain.Article `json:"articles"`
	Count        int              `json:"count"`
	Page         int              `json:"page"`
	PageCount    int              `json:"page_count"`
	PerPage      int              `json:"per_page"`
	NextPage     *string          `json:"next_page"`
	PreviousPage *string          `json:"previous_page"`
}

func (p *articlePage) toDomain() *domain.ArticlePage {
	articles := p.Articles
	if len(p.Results) > 0 {
		articles = p.Results
	}
	page := &domain.ArticlePage{
		Articles:  articles,
		Count:     p.Count,
		Page:      p.Page,
		PageCount: p.PageCount,
		PerPage:   p.PerPage,
	}
	if p.NextPage != nil {
		page.NextPage = *p.NextPage
	}
	if p.PreviousPage != nil {
		page.PreviousPage = *p.PreviousPage
	}
	return page
}

// SearchArticles runs a full-text search and returns the first page of hits.
func (c *Client) SearchArticles(ctx context.Context, query string, perPage int) (*domain.ArticlePage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query is required", domain.ErrInvalidInput)
	}
	if perPage <= 0 || perPage > MaxPerPage {
		perPage = c.cfg.PerPage
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(perPage))
	endpoint := c.cfg.BaseURL + "/api/v2/help_center/articles/search?" + params.Encode()

	logger.Debug("helpcenter: search %q (per_page=%d)", query, perPage)
	return c.getPage(ctx, endpoint)
}

// ListArticles returns one page of articles for locale.
func (c *Client) ListArticles(ctx context.Context, locale, page string) (*domain.ArticlePage, error) {
	endpoint := page
	if endpoint == "" {
		if locale == "" {
			locale = c.cfg.Locale
		}
		params := url.Values{}
		params.Set("per_page", strconv.Itoa(c.cfg.PerPage))
		params.Set("sort_by", "updated_at")
		endpoint = fmt.Sprintf("%s/api/v2/help_center/%s/articles?%s",
			c.cfg.BaseURL, url.PathEscape(locale), params.Encode())
	} else if !strings.HasPrefix(endpoint, c.cfg.BaseURL) {
		return nil, fmt.Errorf("%w: next page %q is outside %s", domain.ErrInvalidInput, page, c.cfg.BaseURL)
	}

	logger.Debug("helpcenter: list %s", endpoint)
	return c.getPage(ctx, endpoint)
}

// AllArticles streams every article in locale, following next_page links.
func (c *Client) AllArticles(ctx context.Context, locale string) (<-chan domain.Article, <-chan error) {
	articles := make(chan domain.Article)
	errs := make(chan error, 1)

	go func() {
		defer close(articles)
		defer close(errs)

		next := ""
		for {
			page, err := c.ListArticles(ctx, locale, next)
			if err != nil {
				errs <- err
				return
			}

			for _, a := range page.Articles {
				if err := ctx.Err(); err != nil {
					errs <- err
					return
				}
				select {
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				case articles <- a:
				}
			}

			if !page.HasNext() {
				return
			}
			next = page.NextPage
		}
	}()

	return articles, errs
}

// getPage fetches and decodes one page.
func (c *Client) getPage(ctx context.Context, endpoint string) (*domain.ArticlePage, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.OAuthToken == "" && c.cfg.APIToken != "" {
		req.SetBasicAuth(c.cfg.Email+"/token", c.cfg.APIToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if err := c.rateLimiter.CheckResponse(resp); err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			URL:        endpoint,
		}
	}

	var page articlePage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrUpstream, err)
	}

	return page.toDomain(), nil
}
