package link

import (
	"context"

	"github.com/homeline-hub/homeline-go/pkg/climacloud"
	"github.com/homeline-hub/homeline-go/pkg/entry"
	"github.com/homeline-hub/homeline-go/pkg/issue"
)

// Authenticator is the cloud API surface the flows depend on.
type Authenticator interface {
	// Login exchanges account credentials for a bearer token.
	Login(ctx context.Context, identifier, password string) (string, error)

	// ListDevices enumerates the devices visible to the token. Flows
	// use it purely as a validation probe and discard the result.
	ListDevices(ctx context.Context, token string) ([]climacloud.Device, error)
}

// EntryService is the entry storage surface the flows depend on.
type EntryService interface {
	// Create persists a new entry. A second entry for the same
	// identifier fails with *entry.DuplicateError.
	Create(ctx context.Context, e *entry.Entry) error

	// Get returns an entry by ID.
	Get(ctx context.Context, id string) (*entry.Entry, error)

	// UpdateCredential replaces the credential of an existing entry.
	UpdateCredential(ctx context.Context, id, credential string) error

	// ScheduleReload queues a background reload of an entry and
	// returns immediately.
	ScheduleReload(entryID string)
}

// IssueSink receives raised notices.
type IssueSink interface {
	Raise(ctx context.Context, issue *issue.Issue) error
}

// Compile-time interface satisfaction checks.
var (
	_ Authenticator = (*climacloud.Client)(nil)
	_ EntryService  = (*entry.Manager)(nil)
	_ IssueSink     = (*issue.MemoryRegistry)(nil)
)
