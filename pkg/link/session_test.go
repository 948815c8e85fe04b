package link

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/homeline-hub/homeline-go/pkg/climacloud"
	"github.com/homeline-hub/homeline-go/pkg/entry"
	"github.com/homeline-hub/homeline-go/pkg/eventlog"
	"github.com/homeline-hub/homeline-go/pkg/flow"
	"github.com/homeline-hub/homeline-go/pkg/issue"
)

// fakeAuthenticator scripts cloud responses for flow tests.
type fakeAuthenticator struct {
	mu           sync.Mutex
	loginFunc    func(ctx context.Context, identifier, password string) (string, error)
	devicesFunc  func(ctx context.Context, token string) ([]climacloud.Device, error)
	loginCalls   int
	devicesCalls int
}

func (f *fakeAuthenticator) Login(ctx context.Context, identifier, password string) (string, error) {
	f.mu.Lock()
	f.loginCalls++
	fn := f.loginFunc
	f.mu.Unlock()

	if fn == nil {
		return "", errors.New("login not scripted")
	}
	return fn(ctx, identifier, password)
}

func (f *fakeAuthenticator) ListDevices(ctx context.Context, token string) ([]climacloud.Device, error) {
	f.mu.Lock()
	f.devicesCalls++
	fn := f.devicesFunc
	f.mu.Unlock()

	if fn == nil {
		return nil, errors.New("devices not scripted")
	}
	return fn(ctx, token)
}

func (f *fakeAuthenticator) LoginCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls
}

func (f *fakeAuthenticator) DevicesCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.devicesCalls
}

// happyAuth returns an authenticator that accepts any credentials.
func happyAuth(token string, devices []climacloud.Device) *fakeAuthenticator {
	return &fakeAuthenticator{
		loginFunc: func(ctx context.Context, identifier, password string) (string, error) {
			return token, nil
		},
		devicesFunc: func(ctx context.Context, token string) ([]climacloud.Device, error) {
			return devices, nil
		},
	}
}

// recordingEventLogger captures emitted flow events.
type recordingEventLogger struct {
	mu     sync.Mutex
	events []eventlog.Event
}

func (l *recordingEventLogger) Log(e eventlog.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *recordingEventLogger) Events() []eventlog.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]eventlog.Event, len(l.events))
	copy(out, l.events)
	return out
}

// flowFixture wires a Service to real in-memory collaborators.
type flowFixture struct {
	service *Service
	entries *entry.Manager
	issues  *issue.MemoryRegistry
	events  *recordingEventLogger
	reloads chan string
}

func newFixture(t *testing.T, auth Authenticator) *flowFixture {
	t.Helper()

	reloads := make(chan string, 4)
	manager, err := entry.NewManager(&entry.ManagerConfig{
		Store: entry.NewMemoryStore(),
		Reload: func(ctx context.Context, entryID string) error {
			reloads <- entryID
			return nil
		},
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	issues := issue.NewMemoryRegistry()
	events := &recordingEventLogger{}

	svc, err := NewService(&ServiceConfig{
		Authenticator: auth,
		Entries:       manager,
		Issues:        issues,
		EventLogger:   events,
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	return &flowFixture{
		service: svc,
		entries: manager,
		issues:  issues,
		events:  events,
		reloads: reloads,
	}
}

// countIssues counts registered notices matching scope and severity.
func countIssues(t *testing.T, reg *issue.MemoryRegistry, scope string, severity issue.Severity) int {
	t.Helper()
	issues, err := reg.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	n := 0
	for _, i := range issues {
		if i.Scope == scope && i.Severity == severity {
			n++
		}
	}
	return n
}

// allIssues returns every registered notice.
func allIssues(t *testing.T, reg *issue.MemoryRegistry) []*issue.Issue {
	t.Helper()
	issues, err := reg.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	return issues
}

func TestModeString(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeSetup, "setup"},
		{ModeImport, "import"},
		{ModeReauth, "reauth"},
		{Mode(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("Mode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateAwaitingInput, "awaiting-input"},
		{StateAuthenticating, "authenticating"},
		{StateComplete, "complete"},
		{StateAborted, "aborted"},
		{StateReauthAwaitingInput, "reauth-awaiting-input"},
		{StateReauthComplete, "reauth-complete"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestSubmitConcurrentFailsBusy(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	auth := &fakeAuthenticator{
		loginFunc: func(ctx context.Context, identifier, password string) (string, error) {
			close(started)
			<-release
			return "tok-123", nil
		},
		devicesFunc: func(ctx context.Context, token string) ([]climacloud.Device, error) {
			return []climacloud.Device{{ID: 1}}, nil
		},
	}
	fx := newFixture(t, auth)
	sess := fx.service.StartSetup()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := sess.Submit(context.Background(), &flow.Input{Identifier: "user@example.com", Password: "secret"})
		if err != nil {
			t.Errorf("first Submit error = %v", err)
		}
	}()

	<-started
	// Second submission while the first is in flight.
	_, err := sess.Submit(context.Background(), &flow.Input{Identifier: "user@example.com", Password: "secret"})
	if !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent Submit error = %v, want ErrBusy", err)
	}

	close(release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("first Submit did not finish")
	}
}

func TestSubmitAfterTerminalFails(t *testing.T) {
	fx := newFixture(t, happyAuth("tok-123", []climacloud.Device{{ID: 1}}))
	sess := fx.service.StartSetup()

	res, err := sess.Submit(context.Background(), &flow.Input{Identifier: "user@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Submit error = %v", err)
	}
	if res.Kind != flow.KindCreated {
		t.Fatalf("result kind = %v, want CREATED", res.Kind)
	}

	if _, err := sess.Submit(context.Background(), &flow.Input{Identifier: "user@example.com", Password: "secret"}); !errors.Is(err, ErrTerminated) {
		t.Errorf("Submit after terminal error = %v, want ErrTerminated", err)
	}
}

func TestSessionEventTrail(t *testing.T) {
	fx := newFixture(t, happyAuth("tok-123", []climacloud.Device{{ID: 1}}))
	sess := fx.service.StartSetup()

	if _, err := sess.Submit(context.Background(), &flow.Input{Identifier: "user@example.com", Password: "secret"}); err != nil {
		t.Fatalf("Submit error = %v", err)
	}

	var states []string
	var endpoints []string
	storeOps := 0
	for _, e := range fx.events.Events() {
		if e.FlowID != sess.ID() {
			t.Errorf("event carries flow ID %q, want %q", e.FlowID, sess.ID())
		}
		switch {
		case e.StateChange != nil:
			states = append(states, e.StateChange.NewState)
		case e.API != nil:
			endpoints = append(endpoints, e.API.Endpoint)
		case e.Store != nil:
			storeOps++
			if e.Store.Op != eventlog.StoreOpCreate {
				t.Errorf("store op = %v, want CREATE", e.Store.Op)
			}
		}
	}

	wantStates := []string{"awaiting-input", "authenticating", "complete"}
	if len(states) != len(wantStates) {
		t.Fatalf("state events = %v, want %v", states, wantStates)
	}
	for i, want := range wantStates {
		if states[i] != want {
			t.Errorf("state event %d = %q, want %q", i, states[i], want)
		}
	}

	wantEndpoints := []string{climacloud.LoginPath, climacloud.DevicesPath}
	if len(endpoints) != len(wantEndpoints) {
		t.Fatalf("API events = %v, want %v", endpoints, wantEndpoints)
	}
	for i, want := range wantEndpoints {
		if endpoints[i] != want {
			t.Errorf("API event %d = %q, want %q", i, endpoints[i], want)
		}
	}

	if storeOps != 1 {
		t.Errorf("store events = %d, want 1", storeOps)
	}
}

func TestEventTrailNeverContainsCredentials(t *testing.T) {
	fx := newFixture(t, happyAuth("tok-123", []climacloud.Device{{ID: 1}}))
	sess := fx.service.StartSetup()

	if _, err := sess.Submit(context.Background(), &flow.Input{Identifier: "user@example.com", Password: "hunter2-secret"}); err != nil {
		t.Fatalf("Submit error = %v", err)
	}

	for _, e := range fx.events.Events() {
		data, err := eventlog.EncodeEvent(e)
		if err != nil {
			t.Fatalf("EncodeEvent failed: %v", err)
		}
		if bytes.Contains(data, []byte("hunter2-secret")) || bytes.Contains(data, []byte("tok-123")) {
			t.Fatalf("event leaks a credential: %+v", e)
		}
	}
}
