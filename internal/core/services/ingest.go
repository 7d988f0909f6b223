package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
	"github.com/custodia-labs/kbrag/internal/core/ports/driving"
	"github.com/custodia-labs/kbrag/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultIngestWorkers bounds concurrent normalisation.
const DefaultIngestWorkers = 4

// DefaultSearchPerPage is the page size of a search-mode ingest.
const DefaultSearchPerPage = 100

// IngestService fetches help-center articles, curates them and writes the
// records to a JSONL sink and/or the article store.
type IngestService struct {
	helpCenter driven.HelpCenter
	normaliser driven.Normaliser
	writer     driven.RecordWriter
	store      driven.ArticleStore
}

// NewIngestService creates a new ingest service.
// At least one of writer and store must be non-nil.
func NewIngestService(
	helpCenter driven.HelpCenter,
	normaliser driven.Normaliser,
	writer driven.RecordWriter,
	store driven.ArticleStore,
) *IngestService {
	return &IngestService{
		helpCenter: helpCenter,
		normaliser: normaliser,
		writer:     writer,
		store:      store,
	}
}

type ingestJob struct {
	seq     int
	article domain.Article
}

type ingestResult struct {
	seq    int
	record *domain.CuratedArticle
	err    error
}

type dispatchSummary struct {
	fetched int
	skipped int
	err     error
}

// Ingest runs one ingest pass. Articles are normalised by a bounded
// worker pool; records are written in the order they were fetched.
func (s *IngestService) Ingest(ctx context.Context, opts driving.IngestOptions) (*domain.IngestStats, error) {
	if s.helpCenter == nil || s.normaliser == nil {
		return nil, fmt.Errorf("%w: ingest requires a help center and a normaliser", domain.ErrInvalidInput)
	}
	if s.writer == nil && s.store == nil {
		return nil, fmt.Errorf("%w: no record sink configured", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Section("Ingest")
	start := time.Now()
	defer logger.Timed("ingest", start)

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultIngestWorkers
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan ingestJob)
	results := make(chan ingestResult, workers)
	summary := make(chan dispatchSummary, 1)

	go s.dispatch(ctx, opts, jobs, summary)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				res := s.curate(ctx, job, opts)
				select {
				case results <- res:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	stats := &domain.IngestStats{}
	pending := make(map[int]*domain.CuratedArticle)
	next := 0
	var firstErr error

	for res := range results {
		if firstErr != nil {
			continue
		}
		if res.err != nil {
			firstErr = res.err
			cancel()
			continue
		}

		pending[res.seq] = res.record
		for {
			record, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++

			if err := s.persist(ctx, record); err != nil {
				firstErr = err
				cancel()
				break
			}
			stats.Written++
		}
	}

	sum := <-summary
	stats.Fetched = sum.fetched
	stats.Skipped = sum.skipped

	if firstErr != nil {
		return stats, firstErr
	}
	if sum.err != nil {
		return stats, sum.err
	}

	logger.Info("Ingest complete: %d fetched, %d written, %d skipped", stats.Fetched, stats.Written, stats.Skipped)
	return stats, nil
}

// dispatch fetches articles, applies the skip filters and hands the rest
// to the workers with sequence numbers.
func (s *IngestService) dispatch(
	ctx context.Context,
	opts driving.IngestOptions,
	jobs chan<- ingestJob,
	summary chan<- dispatchSummary,
) {
	defer close(jobs)

	var sum dispatchSummary
	defer func() { summary <- sum }()

	articles, errs := s.fetch(ctx, opts)
	seq := 0

	for {
		select {
		case <-ctx.Done():
			sum.err = ctx.Err()
			return

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				sum.err = fmt.Errorf("fetch articles: %w", err)
				return
			}

		case article, ok := <-articles:
			if !ok {
				// The article stream may close before a pending error is read.
				if errs != nil {
					if err := <-errs; err != nil {
						sum.err = fmt.Errorf("fetch articles: %w", err)
					}
				}
				return
			}
			sum.fetched++

			if reason := skipReason(&article, opts); reason != "" {
				logger.Debug("Skipping article %d (%s): %s", article.ID, reason, article.Title)
				sum.skipped++
				continue
			}

			select {
			case jobs <- ingestJob{seq: seq, article: article}:
				seq++
			case <-ctx.Done():
				sum.err = ctx.Err()
				return
			}
		}
	}
}

// fetch returns the article stream for opts. Search mode returns a single
// result page; otherwise every article of the locale is listed.
func (s *IngestService) fetch(ctx context.Context, opts driving.IngestOptions) (<-chan domain.Article, <-chan error) {
	if opts.Query == "" {
		logger.Info("Listing articles for locale %q", opts.Locale)
		return s.helpCenter.AllArticles(ctx, opts.Locale)
	}

	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = DefaultSearchPerPage
	}
	logger.Info("Searching articles for %q", opts.Query)

	articles := make(chan domain.Article)
	errs := make(chan error, 1)

	go func() {
		defer close(articles)
		defer close(errs)

		page, err := s.helpCenter.SearchArticles(ctx, opts.Query, perPage)
		if err != nil {
			errs <- err
			return
		}
		for _, article := range page.Articles {
			select {
			case <-ctx.Done():
				return
			case articles <- article:
			}
		}
	}()

	return articles, errs
}

func skipReason(article *domain.Article, opts driving.IngestOptions) string {
	switch {
	case opts.SkipOutdated && article.Outdated:
		return "outdated"
	case opts.SkipDrafts && article.Draft:
		return "draft"
	default:
		return ""
	}
}

// curate normalises one article into its persisted record.
func (s *IngestService) curate(ctx context.Context, job ingestJob, opts driving.IngestOptions) ingestResult {
	article := job.article

	result, err := s.normaliser.Normalise(ctx, &article)
	if err != nil {
		return ingestResult{seq: job.seq, err: fmt.Errorf("normalise article %d: %w", article.ID, err)}
	}

	labels := make([]string, len(article.LabelNames))
	copy(labels, article.LabelNames)

	record := &domain.CuratedArticle{
		ID:        article.ID,
		Title:     article.Title,
		URL:       article.HTMLURL,
		UpdatedAt: article.UpdatedAt,
		Outdated:  article.Outdated,
		Labels:    labels,
		Body:      result.Document.Content,
	}
	if opts.IncludeRawBody {
		record.RawBody = article.Body
	}

	logger.Debug("Curated article %d: %s (%d chars)", article.ID, article.Title, len(record.Body))
	return ingestResult{seq: job.seq, record: record}
}

func (s *IngestService) persist(ctx context.Context, record *domain.CuratedArticle) error {
	if s.writer != nil {
		if err := s.writer.Write(record); err != nil {
			return fmt.Errorf("write article %d: %w", record.ID, err)
		}
	}
	if s.store != nil {
		if err := s.store.Save(ctx, record); err != nil {
			return fmt.Errorf("save article %d: %w", record.ID, err)
		}
	}
	return nil
}
