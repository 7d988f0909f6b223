package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/kbrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/kbrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/kbrag/internal/config"
	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
	"github.com/custodia-labs/kbrag/internal/core/ports/driving"
)

// --- Mock services ---

type mockIngestService struct {
	writer  driven.RecordWriter
	records []domain.CuratedArticle
	stats   *domain.IngestStats
	err     error
	got     driving.IngestOptions
}

func (m *mockIngestService) Ingest(_ context.Context, opts driving.IngestOptions) (*domain.IngestStats, error) {
	m.got = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.writer != nil {
		for i := range m.records {
			if err := m.writer.Write(&m.records[i]); err != nil {
				return nil, err
			}
		}
	}
	if m.stats != nil {
		return m.stats, nil
	}
	return &domain.IngestStats{Fetched: len(m.records), Written: len(m.records)}, nil
}

type mockIndexService struct {
	got []domain.CuratedArticle
	err error
}

func (m *mockIndexService) Index(_ context.Context, articles []domain.CuratedArticle) (*domain.IndexStats, error) {
	m.got = articles
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IndexStats{Documents: len(articles), Chunks: 2 * len(articles)}, nil
}

type mockSearchService struct {
	resp *domain.SearchResponse
	err  error
	got  domain.SearchRequest
}

func (m *mockSearchService) Search(_ context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	m.got = req
	if m.err != nil {
		return nil, m.err
	}
	if m.resp == nil {
		return &domain.SearchResponse{}, nil
	}
	return m.resp, nil
}

type mockAnswerService struct {
	answer *domain.Answer
	err    error
	got    domain.AskRequest
}

func (m *mockAnswerService) Ask(_ context.Context, req domain.AskRequest) (*domain.Answer, error) {
	m.got = req
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

type mockHealthService struct {
	status domain.HealthStatus
}

func (m *mockHealthService) Check(_ context.Context) domain.HealthStatus {
	return m.status
}

type mockArticleService struct {
	articles []domain.CuratedArticle
}

func (m *mockArticleService) List(_ context.Context) ([]domain.CuratedArticle, error) {
	return m.articles, nil
}

func (m *mockArticleService) Get(_ context.Context, id int64) (*domain.CuratedArticle, error) {
	for i := range m.articles {
		if m.articles[i].ID == id {
			return &m.articles[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// --- Mock runtime ---

type mockRuntime struct {
	settings *config.Settings

	ingest    *mockIngestService
	ingestErr error
	gotKeep   bool

	index    *mockIndexService
	indexErr error

	search    *mockSearchService
	searchErr error

	answer    *mockAnswerService
	answerErr error

	health   *mockHealthService
	articles *mockArticleService
	prompts  *file.PromptStore
	metrics  http.Handler

	validateErr error
	validated   int

	closed bool
}

var errNotConfigured = errors.New("not configured")

func (m *mockRuntime) Settings() *config.Settings { return m.settings }

func (m *mockRuntime) Ingest(writer driven.RecordWriter, keepArticles bool) (driving.IngestService, error) {
	if m.ingestErr != nil {
		return nil, m.ingestErr
	}
	m.ingest.writer = writer
	m.gotKeep = keepArticles
	return m.ingest, nil
}

func (m *mockRuntime) Index(_ context.Context) (driving.IndexService, error) {
	if m.indexErr != nil {
		return nil, m.indexErr
	}
	return m.index, nil
}

func (m *mockRuntime) Search(_ context.Context) (driving.SearchService, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.search, nil
}

func (m *mockRuntime) Answer(_ context.Context) (driving.AnswerService, error) {
	if m.answerErr != nil {
		return nil, m.answerErr
	}
	return m.answer, nil
}

func (m *mockRuntime) Health() driving.HealthService { return m.health }

func (m *mockRuntime) Validate(_ context.Context) error {
	m.validated++
	return m.validateErr
}

func (m *mockRuntime) Articles() (driving.ArticleService, error) {
	if m.articles == nil {
		return nil, errNotConfigured
	}
	return m.articles, nil
}

func (m *mockRuntime) Prompts() (*file.PromptStore, error) {
	if m.prompts == nil {
		return nil, errNotConfigured
	}
	return m.prompts, nil
}

func (m *mockRuntime) MetricsHandler() http.Handler { return m.metrics }

func (m *mockRuntime) Close() error {
	m.closed = true
	return nil
}

func newMockRuntime() *mockRuntime {
	return &mockRuntime{
		settings: &config.Settings{},
		ingest:   &mockIngestService{},
		index:    &mockIndexService{},
		search:   &mockSearchService{},
		answer:   &mockAnswerService{answer: &domain.Answer{Answer: "42"}},
		health:   &mockHealthService{status: domain.HealthStatus{Status: domain.StatusHealthy}},
	}
}

// setupTestRuntime installs rt as the command runtime and a memory config
// store. The returned cleanup restores the defaults and resets every flag.
func setupTestRuntime(rt *mockRuntime) (*memory.ConfigStore, func()) {
	oldNewRuntime := newRuntime
	oldNewConfigStore := newConfigStore

	configs := memory.NewConfigStore()
	newRuntime = func(string) (Runtime, error) { return rt, nil }
	newConfigStore = func() (driven.ConfigStore, error) { return configs, nil }

	return configs, func() {
		closeRuntime()
		newRuntime = oldNewRuntime
		newConfigStore = oldNewConfigStore
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags(rootCmd)
	}
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
