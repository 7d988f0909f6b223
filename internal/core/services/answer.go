package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
	"github.com/custodia-labs/kbrag/internal/core/ports/driving"
	"github.com/custodia-labs/kbrag/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// Answer defaults.
const (
	DefaultMaxResults          = 10
	DefaultMinRelevanceScore   = 0.7
	DefaultSimilarityThreshold = 0.8
	DefaultAnswerMaxTokens     = 4000
	DefaultAnswerTemperature   = 0.1
)

// untitledSource is the title reported for hits without one.
const untitledSource = "Unknown"

// AnswerConfig tunes retrieval and generation.
type AnswerConfig struct {
	// MaxResults is k for the nearest-neighbour search.
	MaxResults int

	// MinRelevanceScore is the lowest score a hit needs to be used as context.
	MinRelevanceScore float64

	// SimilarityThreshold is reported on each answer.
	SimilarityThreshold float64

	// MaxTokens caps the generated answer.
	MaxTokens int

	// Temperature is passed through to the model.
	Temperature float64
}

// DefaultAnswerConfig returns the default answer settings.
func DefaultAnswerConfig() AnswerConfig {
	return AnswerConfig{
		MaxResults:          DefaultMaxResults,
		MinRelevanceScore:   DefaultMinRelevanceScore,
		SimilarityThreshold: DefaultSimilarityThreshold,
		MaxTokens:           DefaultAnswerMaxTokens,
		Temperature:         DefaultAnswerTemperature,
	}
}

// AnswerService answers questions with context retrieved from the vector
// index.
type AnswerService struct {
	embedding    driven.EmbeddingService
	vector       driven.VectorSearch
	llm          driven.LLMService
	prompts      driven.PromptStore
	cfg          AnswerConfig
	interactions driven.InteractionStore
	metrics      driven.MetricsRecorder

	now   func() time.Time
	newID func() string
}

// NewAnswerService creates a new answer service.
func NewAnswerService(
	embedding driven.EmbeddingService,
	vector driven.VectorSearch,
	llm driven.LLMService,
	prompts driven.PromptStore,
	cfg AnswerConfig,
) *AnswerService {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultAnswerMaxTokens
	}
	return &AnswerService{
		embedding: embedding,
		vector:    vector,
		llm:       llm,
		prompts:   prompts,
		cfg:       cfg,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// SetInteractionStore enables interaction archiving.
func (s *AnswerService) SetInteractionStore(store driven.InteractionStore) {
	s.interactions = store
}

// SetMetrics sets the request metrics recorder.
func (s *AnswerService) SetMetrics(metrics driven.MetricsRecorder) {
	s.metrics = metrics
}

// Ask retrieves relevant chunks and generates an answer.
func (s *AnswerService) Ask(ctx context.Context, req domain.AskRequest) (answer *domain.Answer, err error) {
	start := time.Now()
	defer func() { record(s.metrics, "ask", start, err) }()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	if s.embedding == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.vector == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = s.newID()
	}
	userID := req.UserID
	if userID == "" {
		userID = domain.AnonymousUser
	}

	logger.Debug("Answering %q (conversation %s)", query, conversationID)

	retrieved, err := s.retrieve(ctx, query)
	if err != nil {
		return nil, err
	}

	prompt, err := s.buildPrompt(query, retrieved)
	if err != nil {
		return nil, err
	}

	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	text = strings.TrimSpace(text)

	answer = &domain.Answer{
		Answer:              text,
		ContextSources:      retrieved.Sources,
		InteractionID:       s.newID(),
		ConversationID:      conversationID,
		Timestamp:           s.now().UTC(),
		ModelID:             s.llm.ModelName(),
		SimilarityThreshold: s.cfg.SimilarityThreshold,
		ChunkCount:          retrieved.ChunkCount,
	}

	s.archive(ctx, answer, query, userID)
	return answer, nil
}

// Retrieve embeds query and assembles context from the relevant hits.
func (s *AnswerService) Retrieve(ctx context.Context, query string) (*domain.RetrievedContext, error) {
	if s.embedding == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.vector == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	return s.retrieve(ctx, query)
}

func (s *AnswerService) retrieve(ctx context.Context, query string) (*domain.RetrievedContext, error) {
	vector, err := s.embedding.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	resp, err := s.vector.KNN(ctx, vector, s.cfg.MaxResults, s.cfg.MinRelevanceScore)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	retrieved := RelevantContext(resp, s.cfg.MinRelevanceScore)
	logger.Debug("Retrieved %d chunks from %d hits", retrieved.ChunkCount, retrieved.TotalHits)
	return retrieved, nil
}

// RelevantContext keeps the hits scoring at least minScore. Every kept hit
// is reported as a source; only hits with content contribute context.
func RelevantContext(resp *domain.SearchResponse, minScore float64) *domain.RetrievedContext {
	retrieved := &domain.RetrievedContext{Sources: []domain.ContextSource{}}
	if resp == nil {
		return retrieved
	}
	retrieved.TotalHits = resp.TotalHits

	var chunks []string
	for _, hit := range resp.Hits {
		if hit.Score < minScore {
			continue
		}

		title := hit.Title
		if title == "" {
			title = untitledSource
		}
		retrieved.Sources = append(retrieved.Sources, domain.ContextSource{
			Title:    title,
			Score:    hit.Score,
			Metadata: hit.Metadata,
		})

		if hit.Content != "" {
			chunks = append(chunks, hit.Content)
		}
	}

	retrieved.Context = strings.Join(chunks, "\n\n")
	retrieved.ChunkCount = len(chunks)
	return retrieved
}

func (s *AnswerService) buildPrompt(query string, retrieved *domain.RetrievedContext) (string, error) {
	if retrieved.Context == "" {
		template, err := s.loadPrompt(driven.PromptAnswerWithoutContext)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(template, query), nil
	}

	template, err := s.loadPrompt(driven.PromptAnswerWithContext)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(template, len(retrieved.Sources), retrieved.Context, query), nil
}

func (s *AnswerService) loadPrompt(name string) (string, error) {
	if s.prompts == nil {
		return "", fmt.Errorf("%w: no prompt store configured", domain.ErrInvalidInput)
	}
	template, err := s.prompts.Load(name)
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", name, err)
	}
	return template, nil
}

// archive stores the interaction. Failures are logged so that a broken
// archive never costs the caller their answer.
func (s *AnswerService) archive(ctx context.Context, answer *domain.Answer, query, userID string) {
	if s.interactions == nil {
		return
	}

	in := &domain.Interaction{
		ID:               answer.InteractionID,
		ConversationID:   answer.ConversationID,
		UserID:           userID,
		Query:            query,
		Response:         answer.Answer,
		Timestamp:        answer.Timestamp,
		ModelID:          answer.ModelID,
		EmbeddingModelID: s.embedding.ModelName(),
	}

	key, err := s.interactions.SaveInteraction(ctx, in)
	if err != nil {
		logger.Warn("Failed to store interaction %s: %v", in.ID, err)
		return
	}
	logger.Debug("Stored interaction %s at %s", in.ID, key)
}
