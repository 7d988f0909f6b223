package services

import (
	"fmt"
	"maps"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

// DefaultVectorField is the k-NN field queried when none is configured.
const DefaultVectorField = "vector_field"

// Lexical queries target the fields IndexService writes for every chunk.
const (
	titleField   = "title"
	contentField = "content"
)

// BuildSearchQuery builds the search body for req. An empty query type
// builds a multi_match query; unknown types build a boolean should-query
// over title and content.
func BuildSearchQuery(req domain.SearchRequest, vectorField string) (map[string]any, error) {
	size := req.Size
	if size <= 0 {
		size = domain.DefaultSearchSize
	}
	if vectorField == "" {
		vectorField = DefaultVectorField
	}

	queryType := req.QueryType
	if queryType == "" {
		queryType = domain.QueryMultiMatch
	}

	switch queryType {
	case domain.QueryMatch:
		return map[string]any{
			"size": size,
			"query": map[string]any{
				"match": map[string]any{contentField: req.Query},
			},
		}, nil

	case domain.QueryMultiMatch:
		return map[string]any{
			"size": size,
			"query": map[string]any{
				"multi_match": map[string]any{
					"query":     req.Query,
					"fields":    []string{titleField + "^2", contentField},
					"type":      "best_fields",
					"fuzziness": "AUTO",
				},
			},
			"highlight": map[string]any{
				"fields": map[string]any{
					titleField: map[string]any{},
					contentField: map[string]any{
						"fragment_size":       150,
						"number_of_fragments": 3,
					},
				},
			},
		}, nil

	case domain.QueryVector:
		if len(req.Vector) == 0 {
			return nil, fmt.Errorf("%w: vector is required for vector search", domain.ErrInvalidInput)
		}
		return map[string]any{
			"size": size,
			"query": map[string]any{
				"knn": map[string]any{
					vectorField: map[string]any{
						"vector": req.Vector,
						"k":      size,
					},
				},
			},
		}, nil

	case domain.QueryCustom:
		if len(req.CustomQuery) == 0 {
			return nil, fmt.Errorf("%w: custom_query is required for custom search", domain.ErrInvalidInput)
		}
		body := maps.Clone(req.CustomQuery)
		if _, ok := body["size"]; !ok {
			body["size"] = size
		}
		return body, nil

	default:
		return map[string]any{
			"size": size,
			"query": map[string]any{
				"bool": map[string]any{
					"should": []any{
						map[string]any{"match": map[string]any{
							titleField: map[string]any{"query": req.Query, "boost": 2.0},
						}},
						map[string]any{"match": map[string]any{
							contentField: map[string]any{"query": req.Query},
						}},
					},
					"minimum_should_match": 1,
				},
			},
		}, nil
	}
}
