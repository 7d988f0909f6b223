package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/kbrag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// Ensure Store implements the interface.
var _ driven.ArticleStore = (*Store)(nil)

// Store is a SQLite-based curated article store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.kbrag/data/articles.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".kbrag", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return Open(filepath.Join(dataDir, "articles.db"))
}

// Open opens the database at path, or a private in-memory database for MemoryDSN.
func Open(path string) (*Store, error) {
	dsn := path
	if path != MemoryDSN {
		// WAL mode for better concurrency
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == MemoryDSN {
		// Every connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}

	s := &Store{
		db:   db,
		path: path,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_articles.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Save stores or replaces an article by ID.
func (s *Store) Save(ctx context.Context, article *domain.CuratedArticle) error {
	if article == nil {
		return domain.ErrInvalidInput
	}

	labels := article.Labels
	if labels == nil {
		labels = []string{}
	}
	labelsJSON, err := json.Marshal(labels)
	if err != nil {
		return fmt.Errorf("marshalling labels: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO articles (id, title, url, updated_at, outdated, labels, body, raw_body, stored_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			url = excluded.url,
			updated_at = excluded.updated_at,
			outdated = excluded.outdated,
			labels = excluded.labels,
			body = excluded.body,
			raw_body = excluded.raw_body,
			stored_at = excluded.stored_at
	`, article.ID, article.Title, article.URL, nullTime(article.UpdatedAt), article.Outdated,
		string(labelsJSON), article.Body, article.RawBody, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving article: %w", err)
	}
	return nil
}

const selectArticle = `SELECT id, title, url, updated_at, outdated, labels, body, raw_body FROM articles`

// Get retrieves an article by ID.
func (s *Store) Get(ctx context.Context, id int64) (*domain.CuratedArticle, error) {
	row := s.db.QueryRowContext(ctx, selectArticle+" WHERE id = ?", id)

	article, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return article, nil
}

// List returns all stored articles ordered by ID.
func (s *Store) List(ctx context.Context) ([]domain.CuratedArticle, error) {
	rows, err := s.db.QueryContext(ctx, selectArticle+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.CuratedArticle //nolint:prealloc // size unknown from query
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, *article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating articles: %w", err)
	}
	return articles, nil
}

// Count returns the number of stored articles.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting articles: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(row scanner) (*domain.CuratedArticle, error) {
	var article domain.CuratedArticle
	var labelsJSON string
	var updatedAt sql.NullTime

	if err := row.Scan(&article.ID, &article.Title, &article.URL, &updatedAt,
		&article.Outdated, &labelsJSON, &article.Body, &article.RawBody); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning article: %w", err)
	}

	if err := json.Unmarshal([]byte(labelsJSON), &article.Labels); err != nil {
		return nil, fmt.Errorf("unmarshaling labels: %w", err)
	}
	if updatedAt.Valid {
		article.UpdatedAt = updatedAt.Time
	}
	return &article, nil
}

// nullTime stores zero times as NULL.
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}
