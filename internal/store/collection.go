// Package store holds fetched, normalized collections in memory for the
// lifetime of the process. Listing state is intentionally not durable across
// runs; every boot starts from a fresh upstream fetch.
package store

import (
	"sync"

	"github.com/infocus-dev/showcase/internal/cms"
)

type key struct {
	collection string
	lang       string
}

// CollectionStore is a concurrency-safe map of (collection, language) to its
// normalized item set. It replaces the ambient globals the page components
// used to share data through; consumers receive it by injection.
type CollectionStore struct {
	mu   sync.RWMutex
	sets map[key][]cms.Item
}

// NewCollectionStore returns an empty store.
func NewCollectionStore() *CollectionStore {
	return &CollectionStore{sets: make(map[key][]cms.Item)}
}

// Replace swaps in a freshly fetched item set for the given scope.
func (s *CollectionStore) Replace(collection, lang string, items []cms.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[key{collection, lang}] = items
}

// Get returns a copy of the item set for the given scope. The copy is
// shallow but item structs are values, so callers may toggle visibility
// flags without affecting other readers.
func (s *CollectionStore) Get(collection, lang string) ([]cms.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items, ok := s.sets[key{collection, lang}]
	if !ok {
		return nil, false
	}
	out := make([]cms.Item, len(items))
	copy(out, items)
	return out, true
}

// Loaded reports whether the scope has been fetched at least once.
func (s *CollectionStore) Loaded(collection, lang string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sets[key{collection, lang}]
	return ok
}
