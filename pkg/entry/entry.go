package entry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store errors.
var (
	ErrNotFound     = errors.New("entry not found")
	ErrInvalidEntry = errors.New("invalid entry")
)

// DuplicateError reports a Create for an identifier that already has a
// record. It carries the credential from the rejected attempt so callers
// can decide whether to refresh the existing record instead; the linking
// flows always abort.
type DuplicateError struct {
	// Identifier is the account identifier that collided.
	Identifier string

	// ExistingID is the ID of the record already stored.
	ExistingID string

	// Credential is the credential from the rejected attempt. Secret.
	Credential string
}

// Error returns the error message. The credential is never included.
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("entry for account %q already exists", e.Identifier)
}

// Entry is one linked cloud account record.
type Entry struct {
	// ID is the host-generated stable reference (UUID string). It is the
	// handle used for re-authentication and reload.
	ID string `json:"id"`

	// Identifier is the remote account's username, exactly as supplied.
	// It is the uniqueness key across all entries.
	Identifier string `json:"identifier"`

	// Title is the human-readable name shown to users.
	Title string `json:"title"`

	// Credential is the bearer token for the account. Secret: never
	// logged, encrypted at rest by backends that support it.
	Credential string `json:"credential"`

	// CreatedAt and UpdatedAt are maintained by stores.
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates an Entry for the given account with a fresh ID.
// Timestamps are assigned by the store on Create.
func New(identifier, credential string) *Entry {
	return &Entry{
		ID:         uuid.NewString(),
		Identifier: identifier,
		Title:      identifier,
		Credential: credential,
	}
}

// Clone returns a copy of the entry.
func (e *Entry) Clone() *Entry {
	c := *e
	return &c
}

// Validate checks the fields every store requires.
func (e *Entry) Validate() error {
	if e == nil || e.ID == "" || e.Identifier == "" {
		return ErrInvalidEntry
	}
	return nil
}

// Store is the durable home of account entries.
//
// Implementations must make the identifier uniqueness check atomic with
// the write: of two concurrent Create calls for the same identifier,
// exactly one succeeds and the other fails with *DuplicateError.
type Store interface {
	// Create persists a new entry. A second entry for the same
	// identifier fails with *DuplicateError carrying the rejected
	// credential.
	Create(ctx context.Context, e *Entry) error

	// Get returns the entry with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Entry, error)

	// GetByIdentifier returns the entry for the given account
	// identifier, or ErrNotFound.
	GetByIdentifier(ctx context.Context, identifier string) (*Entry, error)

	// UpdateCredential replaces the credential of an existing entry and
	// bumps its UpdatedAt. Returns ErrNotFound for unknown IDs.
	UpdateCredential(ctx context.Context, id, credential string) error

	// List returns all entries ordered by creation time.
	List(ctx context.Context) ([]*Entry, error)

	// Delete removes an entry. Returns ErrNotFound for unknown IDs.
	// The linking flows never delete; this serves external callers.
	Delete(ctx context.Context, id string) error
}
