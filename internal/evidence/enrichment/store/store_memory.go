package store

import (
	"context"
	"sync"

	"taxappeal/internal/evidence/models"
	"taxappeal/pkg/domain"
	"taxappeal/pkg/platform/sentinel"
)

// InMemoryStore keeps entries in a process-local map. Used in development and
// tests, and as the durable tier when no external store is configured.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[domain.ParcelID]models.EnrichmentEntry
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[domain.ParcelID]models.EnrichmentEntry)}
}

// Get returns a copy of the stored entry.
func (s *InMemoryStore) Get(_ context.Context, pin domain.ParcelID) (*models.EnrichmentEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[pin]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &entry, nil
}

// Upsert stores entry, replacing any previous one for the same PIN.
// If entry is nil, the operation is a no-op and returns nil.
func (s *InMemoryStore) Upsert(_ context.Context, entry *models.EnrichmentEntry) error {
	if entry == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.PIN] = *entry
	return nil
}

// Len reports how many entries are stored.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
