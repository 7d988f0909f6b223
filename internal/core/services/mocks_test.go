package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockHelpCenter implements driven.HelpCenter for testing.
type mockHelpCenter struct {
	articles  []domain.Article
	searchErr error
	listErr   error // Sent on the error channel after all articles.

	mu          sync.Mutex
	searchQuery string
	searchPer   int
	locale      string
}

func (m *mockHelpCenter) SearchArticles(_ context.Context, query string, perPage int) (*domain.ArticlePage, error) {
	m.mu.Lock()
	m.searchQuery = query
	m.searchPer = perPage
	m.mu.Unlock()

	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return &domain.ArticlePage{Articles: m.articles, Count: len(m.articles)}, nil
}

func (m *mockHelpCenter) ListArticles(_ context.Context, _, _ string) (*domain.ArticlePage, error) {
	return &domain.ArticlePage{Articles: m.articles}, nil
}

func (m *mockHelpCenter) AllArticles(ctx context.Context, locale string) (<-chan domain.Article, <-chan error) {
	m.mu.Lock()
	m.locale = locale
	m.mu.Unlock()

	articles := make(chan domain.Article)
	errs := make(chan error, 1)

	go func() {
		defer close(articles)
		defer close(errs)

		for _, a := range m.articles {
			select {
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			case articles <- a:
			}
		}
		if m.listErr != nil {
			errs <- m.listErr
		}
	}()

	return articles, errs
}

// mockNormaliser implements driven.Normaliser for testing. Bodies are
// upper-cased so tests can tell normalised text from the source.
type mockNormaliser struct {
	failID int64
	delay  func(id int64) time.Duration
}

func (m *mockNormaliser) Normalise(_ context.Context, article *domain.Article) (*driven.NormaliseResult, error) {
	if m.delay != nil {
		time.Sleep(m.delay(article.ID))
	}
	if m.failID != 0 && article.ID == m.failID {
		return nil, errors.New("bad markup")
	}
	return &driven.NormaliseResult{
		Document: domain.Document{Content: "clean:" + article.Body},
	}, nil
}

// mockRecordWriter implements driven.RecordWriter for testing.
type mockRecordWriter struct {
	mu       sync.Mutex
	records  []*domain.CuratedArticle
	writeErr error
	closed   bool
}

func (m *mockRecordWriter) Write(v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.records = append(m.records, v.(*domain.CuratedArticle))
	return nil
}

func (m *mockRecordWriter) Close() error {
	m.closed = true
	return nil
}

func (m *mockRecordWriter) ids() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, len(m.records))
	for i, r := range m.records {
		ids[i] = r.ID
	}
	return ids
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	embedding []float32
	embedErr  error
	short     bool // EmbedBatch returns one vector too few.

	mu      sync.Mutex
	batches [][]string
	queries []string
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.queries = append(m.queries, text)
	m.mu.Unlock()

	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batches = append(m.batches, append([]string(nil), texts...))
	m.mu.Unlock()

	if m.embedErr != nil {
		return nil, m.embedErr
	}
	n := len(texts)
	if m.short && n > 0 {
		n--
	}
	result := make([][]float32, n)
	for i := range result {
		result[i] = m.embedding
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return len(m.embedding)
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// mockVectorSearch implements driven.VectorSearch for testing.
type mockVectorSearch struct {
	response  *domain.SearchResponse
	searchErr error
	bulkErr   error
	health    string
	healthErr error

	knnVector   []float32
	knnK        int
	knnMinScore float64

	searchIndex string
	searchBody  map[string]any

	bulkIndex string
	indexed   []domain.IndexedChunk
	bulkCalls int

	// stale maps a document ID to the chunk count DeleteDocument reports.
	stale     map[string]int
	deleteErr error
	deleted   []string
}

func (m *mockVectorSearch) KNN(_ context.Context, vector []float32, k int, minScore float64) (*domain.SearchResponse, error) {
	m.knnVector = vector
	m.knnK = k
	m.knnMinScore = minScore
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.result(), nil
}

func (m *mockVectorSearch) Search(_ context.Context, index string, body map[string]any) (*domain.SearchResponse, error) {
	m.searchIndex = index
	m.searchBody = body
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.result(), nil
}

func (m *mockVectorSearch) result() *domain.SearchResponse {
	if m.response == nil {
		return &domain.SearchResponse{}
	}
	return m.response
}

func (m *mockVectorSearch) BulkIndex(_ context.Context, index string, chunks []domain.IndexedChunk) error {
	m.bulkCalls++
	m.bulkIndex = index
	if m.bulkErr != nil {
		return m.bulkErr
	}
	m.indexed = append(m.indexed, chunks...)
	return nil
}

func (m *mockVectorSearch) DeleteDocument(_ context.Context, _ string, documentID string) (int, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	m.deleted = append(m.deleted, documentID)
	return m.stale[documentID], nil
}

func (m *mockVectorSearch) Health(_ context.Context) (string, error) {
	if m.healthErr != nil {
		return "", m.healthErr
	}
	if m.health == "" {
		return "green", nil
	}
	return m.health, nil
}

func (m *mockVectorSearch) DefaultIndex() string {
	return "knowledge-base"
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	response    string
	generateErr error
	pingErr     error

	prompt string
	opts   driven.GenerateOptions
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.prompt = prompt
	m.opts = opts
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.response, nil
}

func (m *mockLLMService) Chat(_ context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	return m.response, m.generateErr
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return m.pingErr
}

func (m *mockLLMService) Close() error {
	return nil
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
	loadErr error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.loadErr != nil {
		return "", m.loadErr
	}
	return m.prompts[name], nil
}

func (m *mockPromptStore) Reload() {}

func newMockPrompts() *mockPromptStore {
	return &mockPromptStore{prompts: map[string]string{
		driven.PromptAnswerWithContext:    "sources=%d\ncontext=%s\nquestion=%s",
		driven.PromptAnswerWithoutContext: "no context\nquestion=%s",
	}}
}

// failingInteractionStore implements driven.InteractionStore and always fails.
type failingInteractionStore struct{}

func (failingInteractionStore) SaveInteraction(_ context.Context, _ *domain.Interaction) (string, error) {
	return "", errors.New("disk full")
}

// mockMetrics implements driven.MetricsRecorder for testing.
type mockMetrics struct {
	calls []string
}

func (m *mockMetrics) RecordRequest(operation, status string, _ time.Duration) {
	m.calls = append(m.calls, operation+":"+status)
}
