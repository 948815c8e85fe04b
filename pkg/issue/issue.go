package issue

import (
	"context"
	"errors"
	"time"
)

// ScopePlatform is the scope for notices about the platform itself
// rather than a single integration.
const ScopePlatform = "homeline"

// Registry errors
var (
	// ErrNotFound indicates no notice exists for the given scope and key.
	ErrNotFound = errors.New("issue not found")

	// ErrInvalidIssue indicates a notice is missing its scope or key.
	ErrInvalidIssue = errors.New("invalid issue")
)

// Severity indicates how urgent a notice is.
type Severity uint8

const (
	// SeverityWarning flags a condition that needs attention eventually.
	SeverityWarning Severity = 0

	// SeverityError flags a condition that blocks functionality.
	SeverityError Severity = 1
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Issue is a repair notice shown to the user.
type Issue struct {
	// Scope is the platform or an integration domain the notice
	// belongs to. Together with Key it identifies the notice.
	Scope string `json:"scope"`

	// Key names the condition within the scope.
	Key string `json:"key"`

	// Severity indicates urgency.
	Severity Severity `json:"severity"`

	// Fixable is true when the user can resolve the notice through
	// a guided flow rather than only by changing configuration.
	Fixable bool `json:"fixable"`

	// BreaksIn optionally names the release in which the flagged
	// behavior stops working.
	BreaksIn string `json:"breaks_in,omitempty"`

	// Placeholders feed the rendered notice text.
	Placeholders map[string]string `json:"placeholders,omitempty"`

	// RaisedAt is when the notice was first raised.
	RaisedAt time.Time `json:"raised_at"`
}

// Validate checks that the notice carries its identity.
func (i *Issue) Validate() error {
	if i == nil || i.Scope == "" || i.Key == "" {
		return ErrInvalidIssue
	}
	return nil
}

// clone returns a deep copy.
func (i *Issue) clone() *Issue {
	if i == nil {
		return nil
	}
	c := *i
	if i.Placeholders != nil {
		c.Placeholders = make(map[string]string, len(i.Placeholders))
		for k, v := range i.Placeholders {
			c.Placeholders[k] = v
		}
	}
	return &c
}

// Registry stores active notices keyed by (scope, key).
type Registry interface {
	// Raise records a notice. Raising a notice that already exists
	// replaces its contents while keeping the original RaisedAt.
	Raise(ctx context.Context, issue *Issue) error

	// Get returns the notice for the given scope and key, or
	// ErrNotFound.
	Get(ctx context.Context, scope, key string) (*Issue, error)

	// List returns all active notices ordered by scope then key.
	List(ctx context.Context) ([]*Issue, error)

	// Dismiss removes a notice. Dismissing an unknown notice
	// returns ErrNotFound.
	Dismiss(ctx context.Context, scope, key string) error
}
