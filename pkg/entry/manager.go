package entry

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultReloadTimeout bounds a single scheduled reload.
const DefaultReloadTimeout = 30 * time.Second

// ReloadFunc re-initializes the integration for an entry, typically
// after its credential changed. It runs on a background goroutine.
type ReloadFunc func(ctx context.Context, entryID string) error

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	// Store is the backing entry store. Required.
	Store Store

	// Reload is invoked by ScheduleReload. Optional; if nil,
	// ScheduleReload is a no-op.
	Reload ReloadFunc

	// ReloadTimeout bounds one reload invocation.
	// Defaults to DefaultReloadTimeout.
	ReloadTimeout time.Duration

	// Logger receives reload outcomes. Optional.
	Logger *slog.Logger
}

// Manager wraps a Store and adds integration reload scheduling.
type Manager struct {
	store         Store
	reload        ReloadFunc
	reloadTimeout time.Duration
	logger        *slog.Logger

	wg sync.WaitGroup
}

// NewManager creates a Manager from the given configuration.
func NewManager(config *ManagerConfig) (*Manager, error) {
	if config == nil || config.Store == nil {
		return nil, ErrInvalidEntry
	}

	timeout := config.ReloadTimeout
	if timeout <= 0 {
		timeout = DefaultReloadTimeout
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Manager{
		store:         config.Store,
		reload:        config.Reload,
		reloadTimeout: timeout,
		logger:        logger,
	}, nil
}

// Create persists a new entry.
func (m *Manager) Create(ctx context.Context, e *Entry) error {
	return m.store.Create(ctx, e)
}

// Get returns the entry with the given ID.
func (m *Manager) Get(ctx context.Context, id string) (*Entry, error) {
	return m.store.Get(ctx, id)
}

// GetByIdentifier returns the entry for the given account identifier.
func (m *Manager) GetByIdentifier(ctx context.Context, identifier string) (*Entry, error) {
	return m.store.GetByIdentifier(ctx, identifier)
}

// UpdateCredential replaces the credential of an existing entry.
func (m *Manager) UpdateCredential(ctx context.Context, id, credential string) error {
	return m.store.UpdateCredential(ctx, id, credential)
}

// List returns all entries ordered by creation time.
func (m *Manager) List(ctx context.Context) ([]*Entry, error) {
	return m.store.List(ctx)
}

// Delete removes an entry.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

// ScheduleReload queues a background reload of the given entry and
// returns immediately. The caller does not learn the outcome; failures
// are logged. Use Wait to drain pending reloads at shutdown.
func (m *Manager) ScheduleReload(entryID string) {
	if m.reload == nil {
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), m.reloadTimeout)
		defer cancel()

		if err := m.reload(ctx, entryID); err != nil {
			m.logger.Warn("entry reload failed", "entry_id", entryID, "error", err)
			return
		}
		m.logger.Debug("entry reload complete", "entry_id", entryID)
	}()
}

// Wait blocks until all scheduled reloads have finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}
