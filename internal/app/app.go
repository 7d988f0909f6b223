// Package app wires adapters into core services from typed settings.
//
// Collaborators are built on first use and cached, so a command only needs
// the configuration of the services it actually touches: `kbrag fetch` works
// without a vector endpoint, `kbrag index` without an LLM key.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/kbrag/internal/adapters/driven/ai"
	"github.com/custodia-labs/kbrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/kbrag/internal/adapters/driven/metrics/prometheus"
	"github.com/custodia-labs/kbrag/internal/adapters/driven/storage/blob"
	"github.com/custodia-labs/kbrag/internal/adapters/driven/storage/s3store"
	"github.com/custodia-labs/kbrag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/kbrag/internal/adapters/driven/vector/opensearch"
	"github.com/custodia-labs/kbrag/internal/config"
	"github.com/custodia-labs/kbrag/internal/connectors/helpcenter"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
	"github.com/custodia-labs/kbrag/internal/core/ports/driving"
	"github.com/custodia-labs/kbrag/internal/core/services"
	"github.com/custodia-labs/kbrag/internal/logger"
	"github.com/custodia-labs/kbrag/internal/normalisers/html"
	"github.com/custodia-labs/kbrag/internal/postprocessors/chunker"
)

// App is the composition root of kbrag.
type App struct {
	settings *config.Settings

	mu         sync.Mutex
	helpCenter *helpcenter.Client
	store      *sqlite.Store
	vector     *opensearch.Client
	embedding  driven.EmbeddingService
	llm        driven.LLMService
	prompts    *file.PromptStore
	metrics    *prometheus.Recorder
	answer     *services.AnswerService
	search     *services.SearchService
}

// New creates an App. Nothing is connected until a service is requested.
func New(settings *config.Settings) *App {
	return &App{settings: settings}
}

// Settings returns the settings the App was built from.
func (a *App) Settings() *config.Settings {
	return a.settings
}

// Ingest returns an ingest service writing to writer and, when keepArticles
// is set, to the local article store. writer may be nil.
func (a *App) Ingest(writer driven.RecordWriter, keepArticles bool) (driving.IngestService, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	hc, err := a.helpCenterLocked()
	if err != nil {
		return nil, err
	}

	var store driven.ArticleStore
	if keepArticles {
		s, err := a.storeLocked()
		if err != nil {
			return nil, err
		}
		store = s
	}

	return services.NewIngestService(hc, html.New(), writer, store), nil
}

// Index returns the index service.
func (a *App) Index(ctx context.Context) (driving.IndexService, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	vector, err := a.vectorLocked()
	if err != nil {
		return nil, err
	}
	embedding, err := a.embeddingLocked(ctx)
	if err != nil {
		return nil, err
	}

	kb := a.settings.KnowledgeBase
	c := chunker.New(chunker.WithChunkSize(kb.ChunkSize), chunker.WithOverlap(kb.ChunkOverlap))
	return services.NewIndexService(embedding, vector, c, a.settings.Embedding.BatchSize, vector.DefaultIndex()), nil
}

// Search returns the search service. Vector queries without a vector embed
// the query text when an embedding service can be built.
func (a *App) Search(ctx context.Context) (driving.SearchService, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.search != nil {
		return a.search, nil
	}

	vector, err := a.vectorLocked()
	if err != nil {
		return nil, err
	}

	svc := services.NewSearchService(vector, vector.VectorField())
	if embedding, err := a.embeddingLocked(ctx); err == nil {
		svc.SetEmbeddingService(embedding)
	} else {
		logger.Debug("search: vector queries need an explicit vector: %v", err)
	}
	if metrics := a.metricsLocked(); metrics != nil {
		svc.SetMetrics(metrics)
	}

	a.search = svc
	return svc, nil
}

// Answer returns the RAG answer service.
func (a *App) Answer(ctx context.Context) (driving.AnswerService, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.answer != nil {
		return a.answer, nil
	}

	vector, err := a.vectorLocked()
	if err != nil {
		return nil, err
	}
	embedding, err := a.embeddingLocked(ctx)
	if err != nil {
		return nil, err
	}
	llm, err := a.llmLocked()
	if err != nil {
		return nil, err
	}
	prompts, err := a.promptsLocked()
	if err != nil {
		return nil, err
	}

	svc := services.NewAnswerService(embedding, vector, llm, prompts, a.answerConfig())

	if interactions, err := a.interactionStore(ctx); err != nil {
		logger.Warn("interaction archive disabled: %v", err)
	} else {
		svc.SetInteractionStore(interactions)
	}
	if metrics := a.metricsLocked(); metrics != nil {
		svc.SetMetrics(metrics)
	}

	a.answer = svc
	return svc, nil
}

// Health returns the health service. Collaborators that cannot be built are
// reported as not configured by the check itself.
func (a *App) Health() driving.HealthService {
	a.mu.Lock()
	defer a.mu.Unlock()

	var vector driven.VectorSearch
	if v, err := a.vectorLocked(); err == nil {
		vector = v
	} else {
		logger.Debug("health: %v", err)
	}

	var llm driven.LLMService
	if l, err := a.llmLocked(); err == nil {
		llm = l
	} else {
		logger.Debug("health: %v", err)
	}

	return services.NewHealthService(vector, llm)
}

// Validate pings the configured embedding and LLM services. Services that
// are not configured are skipped; the rest are joined into one error.
func (a *App) Validate(ctx context.Context) error {
	type target struct {
		name string
		svc  ai.Pinger
	}

	a.mu.Lock()
	var targets []target
	if e, err := a.embeddingLocked(ctx); err == nil {
		targets = append(targets, target{"embedding", e})
	} else {
		logger.Debug("validate: %v", err)
	}
	if l, err := a.llmLocked(); err == nil {
		targets = append(targets, target{"llm", l})
	} else {
		logger.Debug("validate: %v", err)
	}
	a.mu.Unlock()

	var errs []error
	for _, t := range targets {
		if err := ai.Validate(ctx, t.svc); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t.name, err))
		}
	}
	return errors.Join(errs...)
}

// Articles returns the service reading the local article store.
func (a *App) Articles() (driving.ArticleService, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	store, err := a.storeLocked()
	if err != nil {
		return nil, err
	}
	return services.NewArticleService(store), nil
}

// Prompts returns the prompt store, which can hot-reload with Watch.
func (a *App) Prompts() (*file.PromptStore, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.promptsLocked()
}

// MetricsHandler returns the Prometheus scrape handler, or nil when metrics
// are disabled.
func (a *App) MetricsHandler() http.Handler {
	a.mu.Lock()
	defer a.mu.Unlock()

	metrics := a.metricsLocked()
	if metrics == nil {
		return nil
	}
	return metrics.Handler()
}

// Close releases every collaborator that was built.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	if a.embedding != nil {
		errs = append(errs, a.embedding.Close())
		a.embedding = nil
	}
	if a.llm != nil {
		errs = append(errs, a.llm.Close())
		a.llm = nil
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
		a.store = nil
	}
	a.answer, a.search = nil, nil
	return errors.Join(errs...)
}

func (a *App) answerConfig() services.AnswerConfig {
	return services.AnswerConfig{
		MaxResults:          a.settings.Vector.MaxResults,
		MinRelevanceScore:   a.settings.KnowledgeBase.MinRelevanceScore,
		SimilarityThreshold: a.settings.Vector.SimilarityThreshold,
		MaxTokens:           a.settings.LLM.MaxTokens,
		Temperature:         a.settings.LLM.Temperature,
	}
}

func (a *App) helpCenterLocked() (*helpcenter.Client, error) {
	if a.helpCenter != nil {
		return a.helpCenter, nil
	}
	if err := a.settings.RequireHelpCenter(); err != nil {
		return nil, err
	}

	hc := a.settings.HelpCenter
	client, err := helpcenter.NewClient(helpcenter.Config{
		BaseURL:           hc.BaseURL,
		Email:             hc.Email,
		APIToken:          hc.APIToken,
		OAuthToken:        hc.OAuthToken,
		Locale:            hc.Locale,
		PerPage:           hc.PerPage,
		RequestsPerSecond: hc.RequestsPerSecond,
		Timeout:           hc.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("creating help-center client: %w", err)
	}
	a.helpCenter = client
	return client, nil
}

func (a *App) storeLocked() (*sqlite.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	store, err := sqlite.NewStore(a.settings.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening article store: %w", err)
	}
	logger.Debug("article store: %s", store.Path())
	a.store = store
	return store, nil
}

func (a *App) vectorLocked() (*opensearch.Client, error) {
	if a.vector != nil {
		return a.vector, nil
	}
	if err := a.settings.RequireVector(); err != nil {
		return nil, err
	}

	v := a.settings.Vector
	cfg := opensearch.Config{
		URL:         v.URL,
		Index:       v.Index,
		VectorField: v.VectorField,
		Username:    v.Username,
		Password:    v.Password,
		APIKey:      v.APIKey,
		Timeout:     v.Timeout,
	}
	if v.SigV4 {
		cfg.SigV4 = &opensearch.SigV4Config{Region: v.AWSRegion, Service: v.AWSService}
	}
	client, err := opensearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	a.vector = client
	return client, nil
}

func (a *App) embeddingLocked(ctx context.Context) (driven.EmbeddingService, error) {
	if a.embedding != nil {
		return a.embedding, nil
	}
	if err := a.settings.RequireEmbedding(); err != nil {
		return nil, err
	}

	embedding, warnings, err := ai.InitEmbedding(ctx, a.settings)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		logger.Info("%s", w)
	}
	a.embedding = embedding
	return embedding, nil
}

func (a *App) llmLocked() (driven.LLMService, error) {
	if a.llm != nil {
		return a.llm, nil
	}
	if err := a.settings.RequireLLM(); err != nil {
		return nil, err
	}

	llm, err := ai.CreateLLMService(a.settings.LLM)
	if err != nil {
		return nil, err
	}
	a.llm = llm
	return llm, nil
}

func (a *App) promptsLocked() (*file.PromptStore, error) {
	if a.prompts != nil {
		return a.prompts, nil
	}
	prompts, err := file.NewPromptStore(a.settings.Storage.PromptDir)
	if err != nil {
		return nil, err
	}
	a.prompts = prompts
	return prompts, nil
}

func (a *App) metricsLocked() *prometheus.Recorder {
	if !a.settings.Server.EnableMetrics {
		return nil
	}
	if a.metrics == nil {
		a.metrics = prometheus.New(prometheus.DefaultNamespace)
	}
	return a.metrics
}

func (a *App) interactionStore(ctx context.Context) (driven.InteractionStore, error) {
	objects, err := a.objectStore(ctx)
	if err != nil {
		return nil, err
	}
	return blob.NewInteractionStore(objects), nil
}

// objectStore selects the S3 bucket when one is configured, else the local
// interactions directory.
func (a *App) objectStore(ctx context.Context) (driven.ObjectStore, error) {
	st := a.settings.Storage
	if st.S3Bucket != "" {
		store, err := s3store.New(ctx, s3store.Config{
			Bucket:   st.S3Bucket,
			Region:   st.S3Region,
			Endpoint: st.S3Endpoint,
		})
		if err != nil {
			return nil, err
		}
		logger.Debug("interaction archive: s3://%s", st.S3Bucket)
		return store, nil
	}

	dir := st.InteractionsDir
	if dir == "" {
		home, err := file.DefaultConfigDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, "interactions")
	}
	store, err := blob.NewStore(dir)
	if err != nil {
		return nil, err
	}
	logger.Debug("interaction archive: %s", dir)
	return store, nil
}
