package issue

import (
	"context"
	"sort"
	"sync"
	"time"
)

// registryKey identifies a notice inside a registry.
type registryKey struct {
	scope string
	key   string
}

// MemoryRegistry is an in-memory Registry. It is safe for concurrent use.
type MemoryRegistry struct {
	mu     sync.RWMutex
	issues map[registryKey]*Issue
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		issues: make(map[registryKey]*Issue),
	}
}

// Raise records a notice, replacing any previous notice with the same
// scope and key.
func (r *MemoryRegistry) Raise(_ context.Context, issue *Issue) error {
	if err := issue.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := issue.clone()
	k := registryKey{scope: issue.Scope, key: issue.Key}
	if existing, ok := r.issues[k]; ok {
		stored.RaisedAt = existing.RaisedAt
	} else if stored.RaisedAt.IsZero() {
		stored.RaisedAt = time.Now()
	}
	r.issues[k] = stored
	return nil
}

// Get returns the notice for the given scope and key.
func (r *MemoryRegistry) Get(_ context.Context, scope, key string) (*Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	issue, ok := r.issues[registryKey{scope: scope, key: key}]
	if !ok {
		return nil, ErrNotFound
	}
	return issue.clone(), nil
}

// List returns all active notices ordered by scope then key.
func (r *MemoryRegistry) List(_ context.Context) ([]*Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Issue, 0, len(r.issues))
	for _, issue := range r.issues {
		out = append(out, issue.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Scope != out[j].Scope {
			return out[i].Scope < out[j].Scope
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

// Dismiss removes a notice.
func (r *MemoryRegistry) Dismiss(_ context.Context, scope, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := registryKey{scope: scope, key: key}
	if _, ok := r.issues[k]; !ok {
		return ErrNotFound
	}
	delete(r.issues, k)
	return nil
}

// Compile-time interface satisfaction check.
var _ Registry = (*MemoryRegistry)(nil)
