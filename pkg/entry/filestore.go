package entry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// stateVersion is the current version of the entries file format.
const stateVersion = 1

// fileState is the on-disk envelope for FileStore.
type fileState struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `json:"saved_at"`

	// Entries contains all account records.
	Entries []*Entry `json:"entries,omitempty"`
}

// FileStore persists entries to a JSON state file. It is safe for
// concurrent use within one process; the file is rewritten atomically
// (temp file + rename) with mode 0600 because entries carry credentials.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by the given file path.
// The file is created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Create persists a new entry.
func (s *FileStore) Create(_ context.Context, e *Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}

	for _, existing := range state.Entries {
		if existing.Identifier == e.Identifier {
			return &DuplicateError{
				Identifier: e.Identifier,
				ExistingID: existing.ID,
				Credential: e.Credential,
			}
		}
	}

	stored := e.Clone()
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	state.Entries = append(state.Entries, stored)

	if err := s.save(state); err != nil {
		return err
	}

	e.CreatedAt = stored.CreatedAt
	e.UpdatedAt = stored.UpdatedAt
	return nil
}

// Get returns the entry with the given ID.
func (s *FileStore) Get(_ context.Context, id string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return nil, err
	}

	for _, e := range state.Entries {
		if e.ID == id {
			return e.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

// GetByIdentifier returns the entry for the given account identifier.
func (s *FileStore) GetByIdentifier(_ context.Context, identifier string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return nil, err
	}

	for _, e := range state.Entries {
		if e.Identifier == identifier {
			return e.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

// UpdateCredential replaces the credential of an existing entry.
func (s *FileStore) UpdateCredential(_ context.Context, id, credential string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}

	for _, e := range state.Entries {
		if e.ID == id {
			e.Credential = credential
			e.UpdatedAt = time.Now()
			return s.save(state)
		}
	}
	return ErrNotFound
}

// List returns all entries ordered by creation time.
func (s *FileStore) List(_ context.Context) ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return nil, err
	}

	out := make([]*Entry, 0, len(state.Entries))
	for _, e := range state.Entries {
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
func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}

	for i, e := range state.Entries {
		if e.ID == id {
			state.Entries = append(state.Entries[:i], state.Entries[i+1:]...)
			return s.save(state)
		}
	}
	return ErrNotFound
}

// load reads the state file. A missing file yields empty state.
func (s *FileStore) load() (*fileState, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &fileState{Version: stateVersion}, nil
	}
	if err != nil {
		return nil, err
	}

	state := &fileState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("corrupt entries file %s: %w", s.path, err)
	}
	return state, nil
}

// save writes the state file atomically.
func (s *FileStore) save(state *fileState) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	state.Version = stateVersion
	state.SavedAt = time.Now()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".entries-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, s.path)
}

// Compile-time interface satisfaction check.
var _ Store = (*FileStore)(nil)
