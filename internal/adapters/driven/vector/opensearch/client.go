// Package opensearch provides a VectorSearch adapter for OpenSearch
// compatible clusters: self-managed with the k-NN plugin, AWS managed
// domains and serverless collections (SigV4).
package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/opensearch-project/opensearch-go/v4"
	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"

	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.VectorSearch = (*Client)(nil)

// Default configuration values.
const (
	DefaultIndex       = "knowledge-base"
	DefaultVectorField = "vector_field"
	DefaultTimeout     = 30 * time.Second
)

// sourceFields are the stored fields returned for retrieved chunks.
var sourceFields = []string{"content", "title", "metadata", "timestamp"}

// Config holds configuration for the OpenSearch client.
type Config struct {
	// URL is the cluster endpoint (required).
	URL string

	// Index is the default index (default: knowledge-base).
	Index string

	// VectorField is the knn_vector field name (default: vector_field).
	VectorField string

	// Username and Password enable basic auth when both are set.
	Username string
	Password string

	// APIKey is sent as "Authorization: ApiKey {key}" when set.
	APIKey string

	// SigV4 signs every request for AWS. It wins over the other auth options.
	SigV4 *SigV4Config

	// Timeout bounds each request (default: 30s).
	Timeout time.Duration

	// Transport overrides the HTTP transport.
	Transport http.RoundTripper
}

// Client talks to the cluster through opensearch-go.
type Client struct {
	cfg        Config
	api        *opensearchapi.Client
	serverless bool
}

// NewClient creates a new OpenSearch client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: opensearch url is required", domain.ErrInvalidInput)
	}
	if _, err := url.ParseRequestURI(cfg.URL); err != nil {
		return nil, fmt.Errorf("%w: opensearch url: %v", domain.ErrInvalidInput, err)
	}
	if cfg.Index == "" {
		cfg.Index = DefaultIndex
	}
	if cfg.VectorField == "" {
		cfg.VectorField = DefaultVectorField
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	osCfg := opensearch.Config{
		Addresses:    []string{cfg.URL},
		Transport:    cfg.Transport,
		DisableRetry: true,
	}

	serverless := false
	switch {
	case cfg.SigV4 != nil:
		signer, err := newSigner(context.Background(), *cfg.SigV4)
		if err != nil {
			return nil, err
		}
		osCfg.Signer = signer
		serverless = cfg.SigV4.service() == ServiceServerless
	case cfg.APIKey != "":
		osCfg.Header = http.Header{"Authorization": []string{"ApiKey " + cfg.APIKey}}
	case cfg.Username != "" && cfg.Password != "":
		osCfg.Username = cfg.Username
		osCfg.Password = cfg.Password
	}

	api, err := opensearchapi.NewClient(opensearchapi.Config{Client: osCfg})
	if err != nil {
		return nil, fmt.Errorf("%w: opensearch client: %v", domain.ErrInvalidInput, err)
	}

	return &Client{cfg: cfg, api: api, serverless: serverless}, nil
}

// DefaultIndex returns the configured index name.
func (c *Client) DefaultIndex() string {
	return c.cfg.Index
}

// VectorField returns the configured knn_vector field name.
func (c *Client) VectorField() string {
	return c.cfg.VectorField
}

// KNN returns the k nearest chunks in the default index.
func (c *Client) KNN(ctx context.Context, vector []float32, k int, minScore float64) (*domain.SearchResponse, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrInvalidInput)
	}
	if k <= 0 {
		k = domain.DefaultSearchSize
	}

	body := map[string]any{
		"size": k,
		"query": map[string]any{
			"knn": map[string]any{
				c.cfg.VectorField: map[string]any{
					"vector": vector,
					"k":      k,
				},
			},
		},
		"_source":   sourceFields,
		"min_score": minScore,
	}
	return c.Search(ctx, c.cfg.Index, body)
}

// searchResponse is the _search wire format. Sources stay generic so
// callers can read fields the index carries beyond the chunk shape.
type searchResponse struct {
	Took int `json:"took"`
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []struct {
			ID        string              `json:"_id"`
			Score     *float64            `json:"_score"`
			Source    map[string]any      `json:"_source"`
			Highlight map[string][]string `json:"highlight"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search executes a raw query body against index.
func (c *Client) Search(ctx context.Context, index string, body map[string]any) (*domain.SearchResponse, error) {
	if index == "" {
		index = c.cfg.Index
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	var wire searchResponse
	req := &opensearchapi.SearchReq{Indices: []string{index}, Body: bytes.NewReader(jsonBody)}
	if err := c.do(ctx, "search "+index, req, &wire); err != nil {
		return nil, err
	}

	result := &domain.SearchResponse{
		TotalHits: wire.Hits.Total.Value,
		Took:      wire.Took,
		Hits:      make([]domain.SearchHit, 0, len(wire.Hits.Hits)),
	}
	if wire.Hits.MaxScore != nil {
		result.MaxScore = *wire.Hits.MaxScore
	}

	for _, h := range wire.Hits.Hits {
		hit := domain.SearchHit{
			ID:         h.ID,
			Source:     h.Source,
			Highlights: h.Highlight,
		}
		if h.Score != nil {
			hit.Score = *h.Score
		}
		hit.Title, _ = h.Source["title"].(string)
		hit.Content, _ = h.Source["content"].(string)
		hit.Metadata, _ = h.Source["metadata"].(map[string]any)
		result.Hits = append(result.Hits, hit)
	}

	return result, nil
}

// Health returns the cluster health status (green, yellow, red).
// Serverless collections have no cluster API; there a reachable default
// index reports green.
func (c *Client) Health(ctx context.Context) (string, error) {
	if c.serverless {
		req := &opensearchapi.IndicesExistsReq{Indices: []string{c.cfg.Index}}
		if err := c.do(ctx, "index exists", req, nil); err != nil {
			return "", err
		}
		return "green", nil
	}

	var health struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, "cluster health", &opensearchapi.ClusterHealthReq{}, &health); err != nil {
		return "", err
	}
	return health.Status, nil
}

// do performs req and decodes a 2xx body into out when out is non-nil.
func (c *Client) do(ctx context.Context, op string, req opensearch.Request, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.api.Client.Do(ctx, req, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrVectorIndexUnavailable, op, err)
	}

	var body []byte
	if resp.Body != nil {
		defer resp.Body.Close()
		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: %s: read response: %v", domain.ErrUpstream, op, err)
		}
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, op)
	}
	if resp.IsError() {
		if len(body) > 512 {
			body = body[:512]
		}
		return fmt.Errorf("%w: %s: opensearch status %d: %s", domain.ErrUpstream, op, resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%w: %s: decode response: %v", domain.ErrUpstream, op, err)
		}
	}
	return nil
}

// isNotFound reports whether err came from a 404.
func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
