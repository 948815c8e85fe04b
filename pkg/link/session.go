package link

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/homeline-hub/homeline-go/pkg/climacloud"
	"github.com/homeline-hub/homeline-go/pkg/entry"
	"github.com/homeline-hub/homeline-go/pkg/eventlog"
	"github.com/homeline-hub/homeline-go/pkg/flow"
)

// kindDuplicateAccount tags duplicate registrations in the event log.
// Duplicates are terminal, never a form error, so the kind does not
// appear in flow.ErrorCode.
const kindDuplicateAccount = "duplicate_account"

// Session is one in-progress linking attempt. A Session is created by
// a Service, advanced by Submit and discarded once it reaches a
// terminal state.
type Session struct {
	id   string
	mode Mode

	auth        Authenticator
	entries     EntryService
	issues      IssueSink
	events      eventlog.Logger
	logger      *slog.Logger
	authTimeout time.Duration

	mu       sync.Mutex
	busy     bool
	state    State
	existing *entry.Entry // reauth target, nil otherwise
	errors   map[string]flow.ErrorCode
}

// ID returns the unique flow session ID.
func (s *Session) ID() string {
	return s.id
}

// Mode returns the flow variant this session runs.
func (s *Session) Mode() Mode {
	return s.mode
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Entry returns the existing entry a reauth session targets, nil for
// other modes.
func (s *Session) Entry() *entry.Entry {
	return s.existing
}

// Errors returns a copy of the field errors from the last attempt.
func (s *Session) Errors() map[string]flow.ErrorCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.errors) == 0 {
		return nil
	}
	out := make(map[string]flow.ErrorCode, len(s.errors))
	for k, v := range s.errors {
		out[k] = v
	}
	return out
}

// Submit advances the flow with the given input. A nil input requests
// the current prompt without consuming an attempt. The session
// processes one submission at a time; a concurrent call fails with
// ErrBusy rather than queueing.
func (s *Session) Submit(ctx context.Context, input *flow.Input) (flow.Result, error) {
	s.mu.Lock()
	if s.state.terminal() {
		s.mu.Unlock()
		return flow.Result{}, ErrTerminated
	}
	if s.busy {
		s.mu.Unlock()
		return flow.Result{}, ErrBusy
	}
	s.busy = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	switch s.mode {
	case ModeImport:
		return s.submitImport(ctx, input)
	case ModeReauth:
		return s.submitReauth(ctx, input)
	default:
		return s.submitSetup(ctx, input)
	}
}

// submitSetup handles a fresh setup attempt: exchange credentials for
// a token, probe device enumeration with it, then register the record.
func (s *Session) submitSetup(ctx context.Context, input *flow.Input) (flow.Result, error) {
	if input == nil {
		return s.prompt(), nil
	}
	if input.Identifier == "" || input.Password == "" {
		return flow.Result{}, fmt.Errorf("%w: identifier and password are required", ErrMissingInput)
	}
	s.setErrors(nil)

	s.setState(StateAuthenticating, "")
	token, err := s.acquireToken(ctx, input.Identifier, input.Password)
	if err != nil {
		code, known := classify(err, false)
		if !known {
			s.logError(err, "authenticate", "")
			s.setState(StateAwaitingInput, "unclassified failure")
			return flow.Result{}, err
		}
		s.logError(err, "authenticate", string(code))
		s.setErrors(map[string]flow.ErrorCode{flow.FieldBase: code})
		s.setState(StateAwaitingInput, string(code))
		return s.prompt(), nil
	}

	return s.register(ctx, input.Identifier, token)
}

// submitImport handles a legacy import. The caller supplies an
// already-issued token; only device enumeration is probed. Both
// outcomes raise a deprecation notice.
func (s *Session) submitImport(ctx context.Context, input *flow.Input) (flow.Result, error) {
	if input == nil || input.Identifier == "" || input.Credential == "" {
		return flow.Result{}, fmt.Errorf("%w: import requires identifier and credential", ErrMissingInput)
	}
	s.setErrors(nil)

	s.setState(StateAuthenticating, "")
	if err := s.validateToken(ctx, input.Credential); err != nil {
		code, known := classify(err, false)
		if !known {
			s.logError(err, "validate", "")
			s.setState(StateAwaitingInput, "unclassified failure")
			return flow.Result{}, err
		}
		s.logError(err, "validate", string(code))
		s.raiseImportNotice(ctx, false, code)
		reason := code.AbortReason()
		s.setState(StateAborted, string(reason))
		return flow.Result{Kind: flow.KindAborted, Reason: reason}, nil
	}

	return s.register(ctx, input.Identifier, input.Credential)
}

// submitReauth handles a re-authentication attempt: a fresh login only,
// no device probe. Success updates the stored credential in place and
// schedules a reload; classified failures keep the session alive for
// another attempt.
func (s *Session) submitReauth(ctx context.Context, input *flow.Input) (flow.Result, error) {
	if input == nil {
		return s.prompt(), nil
	}
	if input.Identifier == "" || input.Password == "" {
		return flow.Result{}, fmt.Errorf("%w: identifier and password are required", ErrMissingInput)
	}
	s.setErrors(nil)

	s.setState(StateAuthenticating, "")
	token, err := s.reauthToken(ctx, input.Identifier, input.Password)
	if err != nil {
		code, known := classify(err, true)
		if !known {
			s.logError(err, "login", "")
			s.setState(StateReauthAwaitingInput, "unclassified failure")
			return flow.Result{}, err
		}
		s.logError(err, "login", string(code))
		s.setErrors(map[string]flow.ErrorCode{flow.FieldBase: code})
		s.setState(StateReauthAwaitingInput, string(code))
		return s.prompt(), nil
	}

	if err := s.entries.UpdateCredential(ctx, s.existing.ID, token); err != nil {
		s.logError(err, "update", "")
		s.setState(StateReauthAwaitingInput, "credential update failed")
		return flow.Result{}, fmt.Errorf("update credential: %w", err)
	}
	s.logStore(eventlog.StoreOpUpdate, s.existing.Identifier)

	// Fire and forget: the flow terminates without waiting for the
	// reload to finish.
	s.entries.ScheduleReload(s.existing.ID)
	s.logStore(eventlog.StoreOpReload, s.existing.Identifier)

	s.setState(StateReauthComplete, string(flow.AbortReauthSuccessful))
	return flow.Result{
		Kind:    flow.KindAborted,
		Reason:  flow.AbortReauthSuccessful,
		EntryID: s.existing.ID,
	}, nil
}

// register establishes the durable account record. The identifier is
// the uniqueness key, exactly as supplied.
func (s *Session) register(ctx context.Context, identifier, token string) (flow.Result, error) {
	e := entry.New(identifier, token)
	if err := s.entries.Create(ctx, e); err != nil {
		var dup *entry.DuplicateError
		if errors.As(err, &dup) {
			// A duplicate during import still counts as a migrated
			// account for notice purposes.
			s.raiseImportNotice(ctx, true, "")
			s.logError(err, "register", kindDuplicateAccount)
			s.setState(StateAborted, string(flow.AbortAlreadyConfigured))
			return flow.Result{Kind: flow.KindAborted, Reason: flow.AbortAlreadyConfigured}, nil
		}
		s.logError(err, "register", "")
		s.setState(StateAwaitingInput, "store failure")
		return flow.Result{}, fmt.Errorf("create entry: %w", err)
	}
	s.logStore(eventlog.StoreOpCreate, identifier)

	s.raiseImportNotice(ctx, true, "")
	s.setState(StateComplete, "record created")
	return flow.Result{
		Kind:       flow.KindCreated,
		Title:      e.Title,
		EntryID:    e.ID,
		Identifier: identifier,
		Credential: token,
	}, nil
}

// acquireToken exchanges credentials for a token and probes device
// enumeration with it, both under one deadline.
func (s *Session) acquireToken(ctx context.Context, identifier, password string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.authTimeout)
	defer cancel()

	token, err := s.login(ctx, identifier, password)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if err := s.probeDevices(ctx, token); err != nil {
		return "", fmt.Errorf("validate token: %w", err)
	}
	return token, nil
}

// validateToken probes device enumeration with an existing token.
func (s *Session) validateToken(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, s.authTimeout)
	defer cancel()

	if err := s.probeDevices(ctx, token); err != nil {
		return fmt.Errorf("validate token: %w", err)
	}
	return nil
}

// reauthToken obtains a fresh token without the device probe.
func (s *Session) reauthToken(ctx context.Context, identifier, password string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.authTimeout)
	defer cancel()

	token, err := s.login(ctx, identifier, password)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	return token, nil
}

func (s *Session) login(ctx context.Context, identifier, password string) (string, error) {
	start := time.Now()
	token, err := s.auth.Login(ctx, identifier, password)
	s.logAPI(climacloud.LoginPath, start, err)
	return token, err
}

func (s *Session) probeDevices(ctx context.Context, token string) error {
	start := time.Now()
	// Results are discarded; the call is purely a validation probe.
	_, err := s.auth.ListDevices(ctx, token)
	s.logAPI(climacloud.DevicesPath, start, err)
	return err
}

// prompt returns the form for the session's current step, annotated
// with errors from the previous attempt.
func (s *Session) prompt() flow.Result {
	var f flow.Form
	if s.mode == ModeReauth {
		f = reauthForm(s.existing.Identifier)
	} else {
		f = setupForm()
	}

	form := &f
	if errs := s.Errors(); len(errs) > 0 {
		form = f.WithErrors(errs)
	}
	return flow.Result{Kind: flow.KindForm, Form: form}
}

// setState transitions the session and records the change.
func (s *Session) setState(next State, reason string) {
	s.mu.Lock()
	old := s.state
	s.state = next
	s.mu.Unlock()

	if old == next {
		return
	}

	s.events.Log(eventlog.Event{
		Timestamp: time.Now(),
		FlowID:    s.id,
		Mode:      s.mode.String(),
		Category:  eventlog.CategoryState,
		EntryID:   s.entryID(),
		StateChange: &eventlog.StateChangeEvent{
			OldState: old.String(),
			NewState: next.String(),
			Reason:   reason,
		},
	})
	s.logger.Debug("flow state changed",
		"flow_id", s.id, "mode", s.mode.String(),
		"old_state", old.String(), "new_state", next.String(),
		"reason", reason)
}

func (s *Session) setErrors(errs map[string]flow.ErrorCode) {
	s.mu.Lock()
	s.errors = errs
	s.mu.Unlock()
}

func (s *Session) entryID() string {
	if s.existing != nil {
		return s.existing.ID
	}
	return ""
}

func (s *Session) logAPI(endpoint string, start time.Time, err error) {
	status := http.StatusOK
	if err != nil {
		status = 0
		var statusErr *climacloud.StatusError
		if errors.As(err, &statusErr) {
			status = statusErr.StatusCode
		}
	}

	s.events.Log(eventlog.Event{
		Timestamp: time.Now(),
		FlowID:    s.id,
		Mode:      s.mode.String(),
		Category:  eventlog.CategoryAPI,
		EntryID:   s.entryID(),
		API: &eventlog.APIEvent{
			Endpoint: endpoint,
			Status:   status,
			Duration: time.Since(start),
		},
	})
}

func (s *Session) logStore(op eventlog.StoreOp, identifier string) {
	s.events.Log(eventlog.Event{
		Timestamp: time.Now(),
		FlowID:    s.id,
		Mode:      s.mode.String(),
		Category:  eventlog.CategoryStore,
		EntryID:   s.entryID(),
		Store: &eventlog.StoreEvent{
			Op:         op,
			Identifier: identifier,
		},
	})
}

// logError records a failure in the event log. The kind is the
// classified code, or empty for unclassified errors. Error messages
// never include credentials.
func (s *Session) logError(err error, step, kind string) {
	s.events.Log(eventlog.Event{
		Timestamp: time.Now(),
		FlowID:    s.id,
		Mode:      s.mode.String(),
		Category:  eventlog.CategoryError,
		EntryID:   s.entryID(),
		Error: &eventlog.ErrorEventData{
			Message: err.Error(),
			Context: step,
			Kind:    kind,
		},
	})
	s.logger.Debug("flow step failed",
		"flow_id", s.id, "mode", s.mode.String(),
		"step", step, "kind", kind, "error", err)
}
