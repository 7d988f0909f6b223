package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

// Provider names accepted by the factories.
const (
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
)

// Validate checks value ranges. Feature-specific requirements (a help-center
// URL for fetch, a vector endpoint for ask) are checked by the Require* methods
// so that unrelated commands work with a partial configuration.
func (s *Settings) Validate() error {
	var errs []error

	switch strings.ToLower(s.Embedding.Provider) {
	case ProviderOpenAI, ProviderOllama:
	default:
		errs = append(errs, fmt.Errorf("embedding.provider must be openai or ollama (got %q)", s.Embedding.Provider))
	}
	switch strings.ToLower(s.LLM.Provider) {
	case ProviderAnthropic, ProviderOpenAI, ProviderOllama:
	default:
		errs = append(errs, fmt.Errorf("llm.provider must be anthropic, openai or ollama (got %q)", s.LLM.Provider))
	}

	if s.LLM.Temperature < 0 || s.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm.temperature must be within [0, 2] (got %v)", s.LLM.Temperature))
	}
	if s.LLM.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("llm.max_tokens must be > 0 (got %d)", s.LLM.MaxTokens))
	}
	if s.Vector.MaxResults <= 0 {
		errs = append(errs, fmt.Errorf("vector.max_results must be > 0 (got %d)", s.Vector.MaxResults))
	}
	if s.Embedding.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("embedding.batch_size must be > 0 (got %d)", s.Embedding.BatchSize))
	}
	if s.KnowledgeBase.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("kb.chunk_size must be > 0 (got %d)", s.KnowledgeBase.ChunkSize))
	}
	if s.KnowledgeBase.ChunkOverlap < 0 || s.KnowledgeBase.ChunkOverlap >= s.KnowledgeBase.ChunkSize {
		errs = append(errs, fmt.Errorf("kb.chunk_overlap must be within [0, chunk_size) (got %d)", s.KnowledgeBase.ChunkOverlap))
	}
	if s.KnowledgeBase.MinRelevanceScore < 0 {
		errs = append(errs, fmt.Errorf("kb.min_relevance_score must be >= 0 (got %v)", s.KnowledgeBase.MinRelevanceScore))
	}
	if s.HelpCenter.PerPage <= 0 || s.HelpCenter.PerPage > 100 {
		errs = append(errs, fmt.Errorf("helpcenter.per_page must be within [1, 100] (got %d)", s.HelpCenter.PerPage))
	}

	return errors.Join(errs...)
}

// RequireHelpCenter reports whether fetching is configured.
func (s *Settings) RequireHelpCenter() error {
	if s.HelpCenter.BaseURL == "" {
		return missing("helpcenter.base_url", "HELPCENTER_URL")
	}
	if (s.HelpCenter.Email == "") != (s.HelpCenter.APIToken == "") {
		return fmt.Errorf("%w: helpcenter.email and helpcenter.api_token must be set together", domain.ErrInvalidInput)
	}
	return nil
}

// RequireVector reports whether the vector-search cluster is configured.
func (s *Settings) RequireVector() error {
	if s.Vector.URL == "" {
		return missing("vector.url", "OPENSEARCH_ENDPOINT")
	}
	if s.Vector.SigV4 && s.Vector.AWSRegion == "" {
		return missing("vector.aws_region", "OPENSEARCH_AWS_REGION")
	}
	return nil
}

// RequireLLM reports whether the answer model is configured.
func (s *Settings) RequireLLM() error {
	if strings.EqualFold(s.LLM.Provider, ProviderAnthropic) && s.LLM.APIKey == "" {
		return missing("llm.api_key", "LLM_API_KEY")
	}
	if strings.EqualFold(s.LLM.Provider, ProviderOpenAI) && s.LLM.APIKey == "" && s.LLM.BaseURL == "" {
		return missing("llm.api_key", "LLM_API_KEY")
	}
	return nil
}

// RequireEmbedding reports whether the embedding service is configured.
func (s *Settings) RequireEmbedding() error {
	if strings.EqualFold(s.Embedding.Provider, ProviderOpenAI) && s.Embedding.APIKey == "" && s.Embedding.BaseURL == "" {
		return missing("embedding.api_key", "EMBEDDING_API_KEY")
	}
	return nil
}

// Verbose reports whether LOG_LEVEL asks for debug output.
func (s *Settings) Verbose() bool {
	return strings.EqualFold(s.Log.Level, "debug")
}

func missing(key, env string) error {
	return fmt.Errorf("%w: %s is not set (config key %s or $%s)", domain.ErrInvalidInput, key, key, env)
}
