// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/kbrag/internal/adapters/driven/embedding/cache"
	ollamaembed "github.com/custodia-labs/kbrag/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/kbrag/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/kbrag/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/kbrag/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/kbrag/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/kbrag/internal/config"
	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
	"github.com/custodia-labs/kbrag/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the AI services built from settings.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	Warnings         []string // Non-fatal issues, e.g. the cache being unreachable.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Init builds the embedding and LLM services named by settings.
func Init(ctx context.Context, s *config.Settings) (*InitResult, error) {
	embedding, warnings, err := InitEmbedding(ctx, s)
	if err != nil {
		return nil, err
	}
	result := &InitResult{EmbeddingService: embedding, Warnings: warnings}

	llm, err := CreateLLMService(s.LLM)
	if err != nil {
		result.Close()
		return nil, err
	}
	result.LLMService = llm

	return result, nil
}

// InitEmbedding builds the embedding service named by settings. The service
// is wrapped with the redis cache when one is configured and reachable; an
// unreachable cache is reported as a warning.
func InitEmbedding(ctx context.Context, s *config.Settings) (driven.EmbeddingService, []string, error) {
	embedding, err := CreateEmbeddingService(s.Embedding)
	if err != nil {
		return nil, nil, err
	}
	if s.Redis.Addr == "" {
		return embedding, nil, nil
	}

	rdb, err := cache.Dial(ctx, s.Redis.Addr, s.Redis.Password, s.Redis.DB)
	if err != nil {
		logger.Warn("embedding cache disabled: %v", err)
		return embedding, []string{fmt.Sprintf("embedding cache disabled: %v", err)}, nil
	}
	return cache.New(embedding, rdb, s.Redis.TTL), nil, nil
}

// CreateEmbeddingService creates the embedding service named by cfg.Provider.
func CreateEmbeddingService(cfg config.EmbeddingConfig) (driven.EmbeddingService, error) {
	switch strings.ToLower(cfg.Provider) {
	case config.ProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Timeout:    cfg.Timeout,
			Dimensions: cfg.Dimensions,
		}), nil

	case config.ProviderOpenAI, "":
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			Model:        cfg.Model,
			Timeout:      cfg.Timeout,
			Dimensions:   cfg.Dimensions,
			MaxBatchSize: cfg.BatchSize,
		})

	case config.ProviderAnthropic:
		// Anthropic does not support embeddings.
		return nil, fmt.Errorf("%w: anthropic does not support embeddings, use ollama or openai",
			domain.ErrEmbeddingUnavailable)

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %s", domain.ErrEmbeddingUnavailable, cfg.Provider)
	}
}

// CreateLLMService creates the LLM service named by cfg.Provider.
func CreateLLMService(cfg config.LLMConfig) (driven.LLMService, error) {
	switch strings.ToLower(cfg.Provider) {
	case config.ProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}), nil

	case config.ProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		})

	case config.ProviderAnthropic, "":
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		})

	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s", domain.ErrLLMUnavailable, cfg.Provider)
	}
}

// Pinger is implemented by every AI service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Validate pings svc with a short timeout.
func Validate(ctx context.Context, svc Pinger) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}
