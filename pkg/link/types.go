package link

import (
	"errors"
	"time"
)

// Domain is this integration's identifier within the Homeline platform.
const Domain = "climacloud"

// IntegrationTitle is the human-readable integration name used in notices.
const IntegrationTitle = "ClimaCloud"

// LegacyConfigRemovedIn names the release that drops YAML account import.
const LegacyConfigRemovedIn = "1.2.0"

// DefaultAuthTimeout bounds one authentication attempt. The credential
// exchange and the device enumeration probe share the deadline.
const DefaultAuthTimeout = 10 * time.Second

// Link errors
var (
	// ErrInvalidConfig indicates the service configuration is incomplete.
	ErrInvalidConfig = errors.New("invalid link service configuration")

	// ErrBusy indicates this session is already processing a submission.
	ErrBusy = errors.New("flow session busy")

	// ErrTerminated indicates the session already reached a terminal state.
	ErrTerminated = errors.New("flow session terminated")

	// ErrMissingInput indicates a required field was empty.
	ErrMissingInput = errors.New("missing required input")
)

// Mode selects the flow variant a session runs.
type Mode uint8

const (
	// ModeSetup is the interactive fresh account setup.
	ModeSetup Mode = 0
	// ModeImport is the non-interactive legacy configuration import.
	ModeImport Mode = 1
	// ModeReauth is the re-authentication of an existing entry.
	ModeReauth Mode = 2
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeSetup:
		return "setup"
	case ModeImport:
		return "import"
	case ModeReauth:
		return "reauth"
	default:
		return "unknown"
	}
}

// State is the lifecycle state of a flow session.
type State uint8

const (
	// StateAwaitingInput - the session needs input to proceed.
	StateAwaitingInput State = 0
	// StateAuthenticating - a submission is being verified against the
	// cloud. Transient; Submit never returns in this state.
	StateAuthenticating State = 1
	// StateComplete - terminal, a record was created.
	StateComplete State = 2
	// StateAborted - terminal, no record was created.
	StateAborted State = 3
	// StateReauthAwaitingInput - the reauth session needs input.
	StateReauthAwaitingInput State = 4
	// StateReauthComplete - terminal, the existing record was updated.
	StateReauthComplete State = 5
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateAwaitingInput:
		return "awaiting-input"
	case StateAuthenticating:
		return "authenticating"
	case StateComplete:
		return "complete"
	case StateAborted:
		return "aborted"
	case StateReauthAwaitingInput:
		return "reauth-awaiting-input"
	case StateReauthComplete:
		return "reauth-complete"
	default:
		return "unknown"
	}
}

// terminal reports whether the state ends a session.
func (s State) terminal() bool {
	switch s {
	case StateComplete, StateAborted, StateReauthComplete:
		return true
	default:
		return false
	}
}
