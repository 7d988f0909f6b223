package services

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"time"

	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
	"github.com/custodia-labs/kbrag/internal/core/ports/driving"
	"github.com/custodia-labs/kbrag/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// DefaultIndexBatchSize is the number of chunks embedded per request.
const DefaultIndexBatchSize = 64

// IndexService chunks curated articles, embeds the chunks and bulk-indexes
// them into the vector-search service.
type IndexService struct {
	embedding driven.EmbeddingService
	vector    driven.VectorSearch
	chunker   driven.Chunker
	batchSize int
	index     string
}

// NewIndexService creates a new index service.
// A batchSize of zero uses DefaultIndexBatchSize; an empty index uses the
// vector service's default index.
func NewIndexService(
	embedding driven.EmbeddingService,
	vector driven.VectorSearch,
	chunker driven.Chunker,
	batchSize int,
	index string,
) *IndexService {
	if batchSize <= 0 {
		batchSize = DefaultIndexBatchSize
	}
	return &IndexService{
		embedding: embedding,
		vector:    vector,
		chunker:   chunker,
		batchSize: batchSize,
		index:     index,
	}
}

// Index writes articles into the vector index.
func (s *IndexService) Index(ctx context.Context, articles []domain.CuratedArticle) (*domain.IndexStats, error) {
	if s.embedding == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.vector == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	if s.chunker == nil {
		return nil, fmt.Errorf("%w: index requires a chunker", domain.ErrInvalidInput)
	}

	logger.Section("Index")
	start := time.Now()
	defer logger.Timed("index", start)

	index := s.index
	if index == "" {
		index = s.vector.DefaultIndex()
	}

	stats := &domain.IndexStats{}
	var pending []domain.IndexedChunk

	for i := range articles {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		article := &articles[i]
		if article.Body == "" {
			logger.Debug("Skipping article %d: empty body", article.ID)
			stats.Skipped++
			continue
		}

		doc := documentFor(article)

		// Chunk IDs are positional, so a shorter body would leave its old
		// tail behind. Drop the article's previous chunks first.
		removed, err := s.vector.DeleteDocument(ctx, index, doc.ID)
		if err != nil {
			return stats, fmt.Errorf("remove stale chunks of %d: %w", article.ID, err)
		}
		stats.Removed += removed

		chunks := s.chunker.Chunk(doc)
		for _, c := range chunks {
			c.Metadata = maps.Clone(doc.Metadata)
			pending = append(pending, domain.IndexedChunk{
				Chunk:     c,
				Title:     doc.Title,
				Timestamp: doc.UpdatedAt,
			})
		}
		stats.Documents++
		logger.Debug("Article %d: %d chunks", article.ID, len(chunks))

		for len(pending) >= s.batchSize {
			if err := s.flush(ctx, index, pending[:s.batchSize]); err != nil {
				return stats, err
			}
			stats.Chunks += s.batchSize
			pending = pending[s.batchSize:]
		}
	}

	if len(pending) > 0 {
		if err := s.flush(ctx, index, pending); err != nil {
			return stats, err
		}
		stats.Chunks += len(pending)
	}

	logger.Info("Indexed %d documents as %d chunks into %s (%d skipped, %d stale chunks removed)",
		stats.Documents, stats.Chunks, index, stats.Skipped, stats.Removed)
	return stats, nil
}

// flush embeds one batch and writes it to the index.
func (s *IndexService) flush(ctx context.Context, index string, batch []domain.IndexedChunk) error {
	texts := make([]string, len(batch))
	for i := range batch {
		texts[i] = batch[i].Content
	}

	vectors, err := s.embedding.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("%w: got %d embeddings for %d chunks", domain.ErrUpstream, len(vectors), len(batch))
	}
	for i := range batch {
		batch[i].Embedding = vectors[i]
	}

	if err := s.vector.BulkIndex(ctx, index, batch); err != nil {
		return fmt.Errorf("bulk index: %w", err)
	}
	logger.Debug("Flushed %d chunks", len(batch))
	return nil
}

func documentFor(article *domain.CuratedArticle) *domain.Document {
	labels := article.Labels
	if labels == nil {
		labels = []string{}
	}

	metadata := map[string]any{
		"url":      article.URL,
		"labels":   labels,
		"outdated": article.Outdated,
	}
	if !article.UpdatedAt.IsZero() {
		metadata["updated_at"] = article.UpdatedAt.UTC().Format(time.RFC3339)
	}

	return &domain.Document{
		ID:        strconv.FormatInt(article.ID, 10),
		URI:       article.URL,
		Title:     article.Title,
		Content:   article.Body,
		Metadata:  metadata,
		UpdatedAt: article.UpdatedAt,
	}
}
