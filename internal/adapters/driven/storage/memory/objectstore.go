package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
)

// Ensure ObjectStore implements the interface.
var _ driven.ObjectStore = (*ObjectStore)(nil)

// ObjectStore is an in-memory implementation of driven.ObjectStore.
type ObjectStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewObjectStore creates a new in-memory object store.
func NewObjectStore() *ObjectStore {
	return &ObjectStore{
		objects: make(map[string][]byte),
	}
}

// Put stores a copy of data under key.
func (s *ObjectStore) Put(_ context.Context, key string, data []byte, _ string) error {
	if key == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), data...)
	return nil
}

// Get returns a copy of the object under key.
func (s *ObjectStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Keys returns every stored key in sorted order.
func (s *ObjectStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
