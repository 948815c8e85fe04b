package entry

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store. It is safe for concurrent use.
// Entries do not survive process restarts; use FileStore or the SQLite
// backend for durability.
type MemoryStore struct {
	mu sync.RWMutex

	// entries holds all records keyed by entry ID.
	entries map[string]*Entry

	// byIdentifier maps account identifiers to entry IDs.
	byIdentifier map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:      make(map[string]*Entry),
		byIdentifier: make(map[string]string),
	}
}

// Create persists a new entry.
func (s *MemoryStore) Create(_ context.Context, e *Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existingID, exists := s.byIdentifier[e.Identifier]; exists {
		return &DuplicateError{
			Identifier: e.Identifier,
			ExistingID: existingID,
			Credential: e.Credential,
		}
	}

	stored := e.Clone()
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.entries[stored.ID] = stored
	s.byIdentifier[stored.Identifier] = stored.ID

	// Reflect assigned timestamps back to the caller's copy.
	e.CreatedAt = stored.CreatedAt
	e.UpdatedAt = stored.UpdatedAt

	return nil
}

// Get returns the entry with the given ID.
func (s *MemoryStore) Get(_ context.Context, id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.entries[id]
	if !exists {
		return nil, ErrNotFound
	}
	return e.Clone(), nil
}

// GetByIdentifier returns the entry for the given account identifier.
func (s *MemoryStore) GetByIdentifier(_ context.Context, identifier string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byIdentifier[identifier]
	if !exists {
		return nil, ErrNotFound
	}
	return s.entries[id].Clone(), nil
}

// UpdateCredential replaces the credential of an existing entry.
func (s *MemoryStore) UpdateCredential(_ context.Context, id, credential string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.entries[id]
	if !exists {
		return ErrNotFound
	}

	e.Credential = credential
	e.UpdatedAt = time.Now()
	return nil
}

// List returns all entries ordered by creation time.
func (s *MemoryStore) List(_ context.Context) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Delete removes an entry.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.entries[id]
	if !exists {
		return ErrNotFound
	}

	delete(s.byIdentifier, e.Identifier)
	delete(s.entries, id)
	return nil
}

// Compile-time interface satisfaction check.
var _ Store = (*MemoryStore)(nil)
