package link

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/homeline-hub/homeline-go/pkg/climacloud"
	"github.com/homeline-hub/homeline-go/pkg/entry"
	"github.com/homeline-hub/homeline-go/pkg/flow"
	"github.com/homeline-hub/homeline-go/pkg/issue"
)

// seedEntry stores an entry and returns it with its assigned ID.
func seedEntry(t *testing.T, fx *flowFixture, identifier, credential string) *entry.Entry {
	t.Helper()
	e := entry.New(identifier, credential)
	if err := fx.entries.Create(context.Background(), e); err != nil {
		t.Fatalf("seed Create failed: %v", err)
	}
	return e
}

func TestReauthPromptPrefillsIdentifier(t *testing.T) {
	fx := newFixture(t, &fakeAuthenticator{})
	seeded := seedEntry(t, fx, "user@example.com", "tok-old")

	sess, err := fx.service.StartReauth(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("StartReauth error = %v", err)
	}
	if sess.Mode() != ModeReauth {
		t.Errorf("mode = %v, want reauth", sess.Mode())
	}
	if sess.State() != StateReauthAwaitingInput {
		t.Errorf("state = %v, want reauth-awaiting-input", sess.State())
	}
	if got := sess.Entry(); got == nil || got.ID != seeded.ID {
		t.Errorf("session entry = %+v, want seeded entry", got)
	}

	res, err := sess.Submit(context.Background(), nil)
	if err != nil {
		t.Fatalf("Submit error = %v", err)
	}
	if res.Kind != flow.KindForm {
		t.Fatalf("result kind = %v, want FORM", res.Kind)
	}
	if res.Form.StepID != StepReauthConfirm {
		t.Errorf("step = %q, want %q", res.Form.StepID, StepReauthConfirm)
	}

	var idField *flow.Field
	for i := range res.Form.Fields {
		if res.Form.Fields[i].Key == FieldIdentifier {
			idField = &res.Form.Fields[i]
		}
	}
	if idField == nil {
		t.Fatal("form has no identifier field")
	}
	if idField.Default != "user@example.com" {
		t.Errorf("identifier prefill = %q, want %q", idField.Default, "user@example.com")
	}
}

func TestReauthSuccess(t *testing.T) {
	auth := &fakeAuthenticator{
		loginFunc: func(ctx context.Context, identifier, password string) (string, error) {
			return "tok-fresh", nil
		},
	}
	fx := newFixture(t, auth)
	seeded := seedEntry(t, fx, "user@example.com", "tok-old")

	sess, err := fx.service.StartReauth(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("StartReauth error = %v", err)
	}

	res, err := sess.Submit(context.Background(), &flow.Input{Identifier: "user@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Submit error = %v", err)
	}

	if res.Kind != flow.KindAborted {
		t.Fatalf("result kind = %v, want ABORTED", res.Kind)
	}
	if res.Reason != flow.AbortReauthSuccessful {
		t.Errorf("reason = %q, want reauth_successful", res.Reason)
	}
	if res.EntryID != seeded.ID {
		t.Errorf("result entry ID = %q, want %q", res.EntryID, seeded.ID)
	}
	if sess.State() != StateReauthComplete {
		t.Errorf("state = %v, want reauth-complete", sess.State())
	}

	// Re-authentication never probes device enumeration.
	if auth.DevicesCalls() != 0 {
		t.Errorf("reauth performed %d device probes, want 0", auth.DevicesCalls())
	}

	stored, err := fx.entries.Get(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored.Credential != "tok-fresh" {
		t.Errorf("stored credential = %q, want tok-fresh", stored.Credential)
	}
	if stored.Identifier != "user@example.com" {
		t.Errorf("stored identifier changed: %q", stored.Identifier)
	}

	entries, err := fx.entries.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("entries = %d, want 1; reauth must not create records", len(entries))
	}

	fx.entries.Wait()
	select {
	case id := <-fx.reloads:
		if id != seeded.ID {
			t.Errorf("reload scheduled for %q, want %q", id, seeded.ID)
		}
	default:
		t.Error("no reload scheduled")
	}

	if got := len(allIssues(t, fx.issues)); got != 0 {
		t.Errorf("reauth raised %d notices, want 0", got)
	}
}

func TestReauthRejectedKeepsCredential(t *testing.T) {
	auth := &fakeAuthenticator{
		loginFunc: func(ctx context.Context, identifier, password string) (string, error) {
			return "", &climacloud.StatusError{StatusCode: http.StatusUnauthorized, Endpoint: climacloud.LoginPath}
		},
	}
	fx := newFixture(t, auth)
	seeded := seedEntry(t, fx, "user@example.com", "tok-old")

	sess, err := fx.service.StartReauth(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("StartReauth error = %v", err)
	}

	res, err := sess.Submit(context.Background(), &flow.Input{Identifier: "user@example.com", Password: "wrong"})
	if err != nil {
		t.Fatalf("Submit error = %v", err)
	}

	if res.Kind != flow.KindForm {
		t.Fatalf("result kind = %v, want FORM", res.Kind)
	}
	if got := res.Form.Errors[flow.FieldBase]; got != flow.ErrorInvalidAuth {
		t.Errorf("base error = %q, want invalid_auth", got)
	}
	if sess.State() != StateReauthAwaitingInput {
		t.Errorf("state = %v, want reauth-awaiting-input", sess.State())
	}

	stored, err := fx.entries.Get(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored.Credential != "tok-old" {
		t.Errorf("rejected reauth modified credential: %q", stored.Credential)
	}

	fx.entries.Wait()
	select {
	case id := <-fx.reloads:
		t.Errorf("rejected reauth scheduled a reload for %q", id)
	default:
	}
}

func TestReauthRetryAfterRejection(t *testing.T) {
	auth := &fakeAuthenticator{
		loginFunc: func(ctx context.Context, identifier, password string) (string, error) {
			if password != "correct" {
				return "", &climacloud.StatusError{StatusCode: http.StatusUnauthorized, Endpoint: climacloud.LoginPath}
			}
			return "tok-fresh", nil
		},
	}
	fx := newFixture(t, auth)
	seeded := seedEntry(t, fx, "user@example.com", "tok-old")

	sess, err := fx.service.StartReauth(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("StartReauth error = %v", err)
	}

	res, err := sess.Submit(context.Background(), &flow.Input{Identifier: "user@example.com", Password: "wrong"})
	if err != nil {
		t.Fatalf("first Submit error = %v", err)
	}
	if res.Kind != flow.KindForm {
		t.Fatalf("first result kind = %v, want FORM", res.Kind)
	}

	res, err = sess.Submit(context.Background(), &flow.Input{Identifier: "user@example.com", Password: "correct"})
	if err != nil {
		t.Fatalf("second Submit error = %v", err)
	}
	if res.Kind != flow.KindAborted || res.Reason != flow.AbortReauthSuccessful {
		t.Fatalf("second result = (%v, %q), want (ABORTED, reauth_successful)", res.Kind, res.Reason)
	}

	stored, err := fx.entries.Get(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored.Credential != "tok-fresh" {
		t.Errorf("stored credential = %q, want tok-fresh", stored.Credential)
	}
}

func TestReauthMalformedResponseTreatedAsRejection(t *testing.T) {
	auth := &fakeAuthenticator{
		loginFunc: func(ctx context.Context, identifier, password string) (string, error) {
			return "", climacloud.ErrMalformedResponse
		},
	}
	fx := newFixture(t, auth)
	seeded := seedEntry(t, fx, "user@example.com", "tok-old")

	sess, err := fx.service.StartReauth(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("StartReauth error = %v", err)
	}

	// Unlike fresh setup, reauth maps a malformed body to a credential
	// rejection instead of propagating it.
	res, err := sess.Submit(context.Background(), &flow.Input{Identifier: "user@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Submit error = %v", err)
	}
	if res.Kind != flow.KindForm {
		t.Fatalf("result kind = %v, want FORM", res.Kind)
	}
	if got := res.Form.Errors[flow.FieldBase]; got != flow.ErrorInvalidAuth {
		t.Errorf("base error = %q, want invalid_auth", got)
	}

	stored, err := fx.entries.Get(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored.Credential != "tok-old" {
		t.Errorf("credential modified: %q", stored.Credential)
	}
}

func TestReauthTimeoutClassifiedCannotConnect(t *testing.T) {
	auth := &fakeAuthenticator{
		loginFunc: func(ctx context.Context, identifier, password string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}

	manager, err := entry.NewManager(&entry.ManagerConfig{Store: entry.NewMemoryStore()})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	seeded := entry.New("user@example.com", "tok-old")
	if err := manager.Create(context.Background(), seeded); err != nil {
		t.Fatalf("seed Create failed: %v", err)
	}

	svc, err := NewService(&ServiceConfig{
		Authenticator: auth,
		Entries:       manager,
		Issues:        issue.NewMemoryRegistry(),
		AuthTimeout:   20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	sess, err := svc.StartReauth(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("StartReauth error = %v", err)
	}

	res, err := sess.Submit(context.Background(), &flow.Input{Identifier: "user@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Submit error = %v", err)
	}
	if got := res.Form.Errors[flow.FieldBase]; got != flow.ErrorCannotConnect {
		t.Errorf("base error = %q, want cannot_connect", got)
	}
}

func TestReauthUpdateFailurePropagates(t *testing.T) {
	updateErr := errors.New("store sealed")

	manager, err := entry.NewManager(&entry.ManagerConfig{Store: entry.NewMemoryStore()})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	seeded := entry.New("user@example.com", "tok-old")
	if err := manager.Create(context.Background(), seeded); err != nil {
		t.Fatalf("seed Create failed: %v", err)
	}

	svc, err := NewService(&ServiceConfig{
		Authenticator: happyAuth("tok-fresh", nil),
		Entries:       &updateFailingEntryService{EntryService: manager, updateErr: updateErr},
		Issues:        issue.NewMemoryRegistry(),
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	sess, err := svc.StartReauth(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("StartReauth error = %v", err)
	}

	_, err = sess.Submit(context.Background(), &flow.Input{Identifier: "user@example.com", Password: "secret"})
	if !errors.Is(err, updateErr) {
		t.Fatalf("Submit error = %v, want wrapped %v", err, updateErr)
	}
	if sess.State() != StateReauthAwaitingInput {
		t.Errorf("state = %v, want reauth-awaiting-input", sess.State())
	}
}

func TestReauthMissingInput(t *testing.T) {
	fx := newFixture(t, &fakeAuthenticator{})
	seeded := seedEntry(t, fx, "user@example.com", "tok-old")

	sess, err := fx.service.StartReauth(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("StartReauth error = %v", err)
	}

	if _, err := sess.Submit(context.Background(), &flow.Input{Identifier: "user@example.com"}); !errors.Is(err, ErrMissingInput) {
		t.Errorf("Submit error = %v, want ErrMissingInput", err)
	}
}

// updateFailingEntryService delegates everything except UpdateCredential.
type updateFailingEntryService struct {
	EntryService
	updateErr error
}

func (s *updateFailingEntryService) UpdateCredential(context.Context, string, string) error {
	return s.updateErr
}
