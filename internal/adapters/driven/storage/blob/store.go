// Package blob provides a filesystem-backed object store with S3-style keys.
package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ObjectStore = (*Store)(nil)

// Store keeps objects as files below a root directory.
// A key such as "interactions/2024/05/06/id.json" maps to the same
// relative path under the root.
type Store struct {
	root string
}

// NewStore creates a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: blob root directory is required", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob directory: %w", err)
	}
	return &Store{root: dir}, nil
}

// Root returns the root directory.
func (s *Store) Root() string {
	return s.root
}

// Put writes data under key, replacing any existing object.
// The write goes through a temporary file so readers never see partial data.
func (s *Store) Put(ctx context.Context, key string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("creating key directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".put-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing object: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("committing object: %w", err)
	}
	return nil
}

// Get reads the object under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading object: %w", err)
	}
	return data, nil
}

// resolve maps a key to a path, rejecting keys that escape the root.
func (s *Store) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if key == "" || clean == "/" || strings.HasSuffix(key, "/") {
		return "", fmt.Errorf("%w: invalid object key %q", domain.ErrInvalidInput, key)
	}
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

// InteractionKey returns the key an interaction is stored under:
// interactions/YYYY/MM/DD/{id}.json, dated in UTC.
func InteractionKey(in *domain.Interaction) string {
	return fmt.Sprintf("interactions/%s/%s.json", in.Timestamp.UTC().Format("2006/01/02"), in.ID)
}

// InteractionStore writes interactions as indented JSON into an ObjectStore.
type InteractionStore struct {
	objects driven.ObjectStore
}

// Ensure InteractionStore implements the interface.
var _ driven.InteractionStore = (*InteractionStore)(nil)

// NewInteractionStore stores interactions in objects.
func NewInteractionStore(objects driven.ObjectStore) *InteractionStore {
	return &InteractionStore{objects: objects}
}

// SaveInteraction stores in under its InteractionKey and returns the key.
func (s *InteractionStore) SaveInteraction(ctx context.Context, in *domain.Interaction) (string, error) {
	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal interaction: %w", err)
	}
	key := InteractionKey(in)
	if err := s.objects.Put(ctx, key, data, "application/json"); err != nil {
		return "", err
	}
	return key, nil
}
