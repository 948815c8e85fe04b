package link

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/homeline-hub/homeline-go/pkg/entry"
	"github.com/homeline-hub/homeline-go/pkg/eventlog"
	"github.com/homeline-hub/homeline-go/pkg/flow"
)

// ServiceConfig configures the linking service.
type ServiceConfig struct {
	// Authenticator is the cloud API client. Required.
	Authenticator Authenticator

	// Entries is the entry storage service. Required.
	Entries EntryService

	// Issues receives raised notices. Required.
	Issues IssueSink

	// EventLogger receives flow events. Optional; defaults to NopLogger.
	EventLogger eventlog.Logger

	// Logger receives operational logs. Optional.
	Logger *slog.Logger

	// AuthTimeout bounds one authentication attempt. Defaults to
	// DefaultAuthTimeout.
	AuthTimeout time.Duration
}

// Validate checks if the config is valid.
func (c *ServiceConfig) Validate() error {
	if c.Authenticator == nil {
		return fmt.Errorf("%w: authenticator is required", ErrInvalidConfig)
	}
	if c.Entries == nil {
		return fmt.Errorf("%w: entry service is required", ErrInvalidConfig)
	}
	if c.Issues == nil {
		return fmt.Errorf("%w: issue sink is required", ErrInvalidConfig)
	}
	return nil
}

// Service creates linking flow sessions for the ClimaCloud integration.
// It is safe for concurrent use; each session is independent.
type Service struct {
	auth        Authenticator
	entries     EntryService
	issues      IssueSink
	events      eventlog.Logger
	logger      *slog.Logger
	authTimeout time.Duration
}

// NewService creates a Service from the given configuration.
func NewService(config *ServiceConfig) (*Service, error) {
	if config == nil {
		return nil, ErrInvalidConfig
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	events := config.EventLogger
	if events == nil {
		events = eventlog.NopLogger{}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := config.AuthTimeout
	if timeout <= 0 {
		timeout = DefaultAuthTimeout
	}

	return &Service{
		auth:        config.Authenticator,
		entries:     config.Entries,
		issues:      config.Issues,
		events:      events,
		logger:      logger,
		authTimeout: timeout,
	}, nil
}

// StartSetup begins an interactive fresh account setup flow.
func (s *Service) StartSetup() *Session {
	return s.newSession(ModeSetup, StateAwaitingInput, nil)
}

// StartImport begins a non-interactive legacy import flow. The caller
// supplies the account record via Submit.
func (s *Service) StartImport() *Session {
	return s.newSession(ModeImport, StateAwaitingInput, nil)
}

// StartReauth begins re-authentication for an existing entry, loading
// the stored record into the session.
func (s *Service) StartReauth(ctx context.Context, entryID string) (*Session, error) {
	e, err := s.entries.Get(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("load entry %s: %w", entryID, err)
	}
	return s.newSession(ModeReauth, StateReauthAwaitingInput, e), nil
}

// ImportAccount runs a complete legacy import for one account.
func (s *Service) ImportAccount(ctx context.Context, identifier, credential string) (flow.Result, error) {
	sess := s.StartImport()
	return sess.Submit(ctx, &flow.Input{Identifier: identifier, Credential: credential})
}

func (s *Service) newSession(mode Mode, initial State, existing *entry.Entry) *Session {
	sess := &Session{
		id:          uuid.NewString(),
		mode:        mode,
		state:       initial,
		existing:    existing,
		auth:        s.auth,
		entries:     s.entries,
		issues:      s.issues,
		events:      s.events,
		logger:      s.logger,
		authTimeout: s.authTimeout,
	}

	s.events.Log(eventlog.Event{
		Timestamp: time.Now(),
		FlowID:    sess.id,
		Mode:      mode.String(),
		Category:  eventlog.CategoryState,
		EntryID:   sess.entryID(),
		StateChange: &eventlog.StateChangeEvent{
			NewState: initial.String(),
			Reason:   "flow started",
		},
	})
	s.logger.Debug("flow session started",
		"flow_id", sess.id, "mode", mode.String(), "entry_id", sess.entryID())

	return sess
}
