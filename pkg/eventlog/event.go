package eventlog

import (
	"time"

	"github.com/homeline-hub/homeline-go/pkg/issue"
)

// Event represents a flow log event captured during setup, import or
// reauth. CBOR encoding uses integer keys for compactness. Events
// carry identifiers and endpoints but never credentials.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// FlowID uniquely identifies the flow session (UUID).
	FlowID string `cbor:"2,keyasint"`

	// Mode names the kind of flow (setup, import, reauth).
	Mode string `cbor:"3,keyasint,omitempty"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// EntryID is the account entry (populated once known).
	EntryID string `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	StateChange *StateChangeEvent `cbor:"10,keyasint,omitempty"` // Flow state transition
	API         *APIEvent         `cbor:"11,keyasint,omitempty"` // Cloud API call
	Store       *StoreEvent       `cbor:"12,keyasint,omitempty"` // Entry store operation
	Issue       *IssueEvent       `cbor:"13,keyasint,omitempty"` // Raised notice
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"` // Errors at any point
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryState indicates a flow state transition.
	CategoryState Category = 0
	// CategoryAPI indicates a cloud API call.
	CategoryAPI Category = 1
	// CategoryStore indicates an entry store operation.
	CategoryStore Category = 2
	// CategoryIssue indicates a raised notice.
	CategoryIssue Category = 3
	// CategoryError indicates an error event.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryState:
		return "STATE"
	case CategoryAPI:
		return "API"
	case CategoryStore:
		return "STORE"
	case CategoryIssue:
		return "ISSUE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures a flow state transition.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty for the initial state).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// APIEvent captures one cloud API call.
type APIEvent struct {
	// Endpoint is the request path (never the full URL with query).
	Endpoint string `cbor:"1,keyasint"`

	// Status is the HTTP status code (0 when the call never completed).
	Status int `cbor:"2,keyasint,omitempty"`

	// Duration is how long the call took. Stored as nanoseconds.
	Duration time.Duration `cbor:"3,keyasint,omitempty"`
}

// StoreEvent captures an entry store operation.
type StoreEvent struct {
	// Op is the operation performed.
	Op StoreOp `cbor:"1,keyasint"`

	// Identifier is the account identifier involved.
	Identifier string `cbor:"2,keyasint,omitempty"`
}

// StoreOp indicates the kind of store operation.
type StoreOp uint8

const (
	// StoreOpCreate indicates a new entry was registered.
	StoreOpCreate StoreOp = 0
	// StoreOpUpdate indicates an entry credential was replaced.
	StoreOpUpdate StoreOp = 1
	// StoreOpReload indicates an entry reload was scheduled.
	StoreOpReload StoreOp = 2
)

// String returns the store operation name.
func (o StoreOp) String() string {
	switch o {
	case StoreOpCreate:
		return "CREATE"
	case StoreOpUpdate:
		return "UPDATE"
	case StoreOpReload:
		return "RELOAD"
	default:
		return "UNKNOWN"
	}
}

// IssueEvent captures a raised notice.
type IssueEvent struct {
	// Scope is the notice scope (platform or integration domain).
	Scope string `cbor:"1,keyasint"`

	// Key names the condition within the scope.
	Key string `cbor:"2,keyasint"`

	// Severity indicates urgency.
	Severity issue.Severity `cbor:"3,keyasint"`
}

// ErrorEventData captures errors at any point in a flow.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"2,keyasint,omitempty"`

	// Kind is the classified failure kind, if the error was
	// classified (empty for unclassified errors).
	Kind string `cbor:"3,keyasint,omitempty"`
}
