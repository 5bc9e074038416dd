package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/bgallie/mzenigma/catalog"
)

// MemoryStore keeps encoded catalogs in a map, so callers never share a
// catalog with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	catalogs    map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.catalogs = make(map[string][]byte)
	return nil
}

func (s *MemoryStore) Save(_ context.Context, c *catalog.Catalog) (string, error) {
	data, err := EncodeCatalog(c)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return "", errNotInitialized
	}
	s.catalogs[c.Handle()] = data
	return c.Handle(), nil
}

func (s *MemoryStore) Load(_ context.Context, handle string) (*catalog.Catalog, error) {
	s.mu.RLock()
	data, ok := s.catalogs[handle]
	s.mu.RUnlock()
	if !ok {
		return nil, notFound(handle)
	}
	return DecodeCatalog(data)
}

func (s *MemoryStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	handles := make([]string, 0, len(s.catalogs))
	for h := range s.catalogs {
		handles = append(handles, h)
	}
	sort.Strings(handles)
	return handles, nil
}
