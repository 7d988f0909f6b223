package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

// maxChunksPerDocument caps how many stale chunks one delete removes.
const maxChunksPerDocument = 10000

// bulkResponse is the _bulk wire format, reduced to error reporting.
type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

// BulkIndex writes chunks into index with a single _bulk request.
func (c *Client) BulkIndex(ctx context.Context, index string, chunks []domain.IndexedChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if index == "" {
		index = c.cfg.Index
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, chunk := range chunks {
		action := map[string]any{"index": map[string]any{"_index": index, "_id": chunk.ID}}
		if err := enc.Encode(action); err != nil {
			return fmt.Errorf("encode bulk action: %w", err)
		}
		if err := enc.Encode(c.document(chunk)); err != nil {
			return fmt.Errorf("encode chunk %s: %w", chunk.ID, err)
		}
	}
	return c.bulk(ctx, "bulk index", &buf, len(chunks))
}

// DeleteDocument removes every chunk of documentID from index and returns
// how many were deleted. A missing index deletes nothing. Chunk IDs are
// looked up with a search first because serverless collections have no
// _delete_by_query.
func (c *Client) DeleteDocument(ctx context.Context, index, documentID string) (int, error) {
	if documentID == "" {
		return 0, fmt.Errorf("%w: empty document id", domain.ErrInvalidInput)
	}
	if index == "" {
		index = c.cfg.Index
	}

	found, err := c.Search(ctx, index, map[string]any{
		"size":    maxChunksPerDocument,
		"_source": false,
		"query": map[string]any{
			"term": map[string]any{"metadata.document_id": documentID},
		},
	})
	if err != nil {
		if isNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	if len(found.Hits) == 0 {
		return 0, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, hit := range found.Hits {
		if err := enc.Encode(map[string]any{"delete": map[string]any{"_index": index, "_id": hit.ID}}); err != nil {
			return 0, fmt.Errorf("encode bulk action: %w", err)
		}
	}
	if err := c.bulk(ctx, "bulk delete", &buf, len(found.Hits)); err != nil {
		return 0, err
	}
	return len(found.Hits), nil
}

func (c *Client) bulk(ctx context.Context, op string, body *bytes.Buffer, n int) error {
	var wire bulkResponse
	if err := c.do(ctx, op, &opensearchapi.BulkReq{Body: body}, &wire); err != nil {
		return err
	}
	if !wire.Errors {
		return nil
	}

	failed := 0
	var first string
	for _, item := range wire.Items {
		for _, result := range item {
			if result.Error == nil {
				continue
			}
			failed++
			if first == "" {
				first = fmt.Sprintf("%s: %s: %s", result.ID, result.Error.Type, result.Error.Reason)
			}
		}
	}
	return fmt.Errorf("%w: %s: %d of %d chunks failed (first: %s)", domain.ErrUpstream, op, failed, n, first)
}

// document is the stored shape of one chunk.
func (c *Client) document(chunk domain.IndexedChunk) map[string]any {
	metadata := make(map[string]any, len(chunk.Metadata)+2)
	for k, v := range chunk.Metadata {
		metadata[k] = v
	}
	metadata["document_id"] = chunk.DocumentID
	metadata["position"] = chunk.Position

	doc := map[string]any{
		"content":  chunk.Content,
		"title":    chunk.Title,
		"metadata": metadata,
	}
	if !chunk.Timestamp.IsZero() {
		doc["timestamp"] = chunk.Timestamp.UTC().Format(time.RFC3339)
	}
	if len(chunk.Embedding) > 0 {
		doc[c.cfg.VectorField] = chunk.Embedding
	}
	return doc
}
