package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
	"github.com/custodia-labs/kbrag/internal/core/ports/driving"
	"github.com/custodia-labs/kbrag/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService runs keyword and vector searches against the vector-search
// service.
type SearchService struct {
	vector      driven.VectorSearch
	vectorField string
	embedding   driven.EmbeddingService
	metrics     driven.MetricsRecorder
}

// NewSearchService creates a new search service.
func NewSearchService(vector driven.VectorSearch, vectorField string) *SearchService {
	return &SearchService{
		vector:      vector,
		vectorField: vectorField,
	}
}

// SetEmbeddingService lets vector searches embed the query text when the
// request carries no vector.
func (s *SearchService) SetEmbeddingService(embedding driven.EmbeddingService) {
	s.embedding = embedding
}

// SetMetrics sets the request metrics recorder.
func (s *SearchService) SetMetrics(metrics driven.MetricsRecorder) {
	s.metrics = metrics
}

// Search builds a query of the requested type and executes it.
func (s *SearchService) Search(ctx context.Context, req domain.SearchRequest) (resp *domain.SearchResponse, err error) {
	start := time.Now()
	defer func() { record(s.metrics, "search", start, err) }()

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	if s.vector == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	if req.Index == "" {
		req.Index = s.vector.DefaultIndex()
	}
	if req.Size <= 0 {
		req.Size = domain.DefaultSearchSize
	}

	if req.QueryType == domain.QueryVector && len(req.Vector) == 0 && s.embedding != nil {
		vector, err := s.embedding.Embed(ctx, req.Query)
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		req.Vector = vector
	}

	body, err := BuildSearchQuery(req, s.vectorField)
	if err != nil {
		return nil, err
	}

	logger.Debug("Searching %s (%s, size %d): %q", req.Index, queryTypeName(req.QueryType), req.Size, req.Query)
	resp, err = s.vector.Search(ctx, req.Index, body)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", req.Index, err)
	}
	logger.Debug("Search returned %d of %d hits in %dms", len(resp.Hits), resp.TotalHits, resp.Took)
	return resp, nil
}

func queryTypeName(t domain.QueryType) string {
	if t == "" {
		return string(domain.QueryMultiMatch)
	}
	return string(t)
}

// record reports one request outcome when a recorder is configured.
func record(metrics driven.MetricsRecorder, operation string, start time.Time, err error) {
	if metrics == nil {
		return
	}
	status := driven.StatusSuccess
	if err != nil {
		status = driven.StatusError
	}
	metrics.RecordRequest(operation, status, time.Since(start))
}
