package flowtest

import (
	"context"
	"sync"
	"testing"

	"github.com/homeline-hub/homeline-go/pkg/climacloud"
	"github.com/homeline-hub/homeline-go/pkg/entry"
	"github.com/homeline-hub/homeline-go/pkg/flow"
	"github.com/homeline-hub/homeline-go/pkg/issue"
	"github.com/homeline-hub/homeline-go/pkg/link"
)

// defaultToken is returned by scripted logins that name no token.
const defaultToken = "scenario-token"

// scriptedCloud answers API calls from the scenario's outcome queues.
type scriptedCloud struct {
	mu      sync.Mutex
	logins  []CallOutcome
	devices []CallOutcome
}

func newScriptedCloud(script CloudScript) *scriptedCloud {
	return &scriptedCloud{
		logins:  append([]CallOutcome(nil), script.Logins...),
		devices: append([]CallOutcome(nil), script.Devices...),
	}
}

// next pops the queue's head, keeping the final outcome for repeats.
func next(queue *[]CallOutcome) CallOutcome {
	if len(*queue) == 0 {
		return CallOutcome{}
	}
	out := (*queue)[0]
	if len(*queue) > 1 {
		*queue = (*queue)[1:]
	}
	return out
}

func (c *scriptedCloud) Login(ctx context.Context, identifier, password string) (string, error) {
	c.mu.Lock()
	out := next(&c.logins)
	c.mu.Unlock()

	if out.Status != 0 {
		return "", &climacloud.StatusError{StatusCode: out.Status, Endpoint: climacloud.LoginPath}
	}
	if out.Malformed {
		return "", climacloud.ErrMalformedResponse
	}
	if out.Token != "" {
		return out.Token, nil
	}
	return defaultToken, nil
}

func (c *scriptedCloud) ListDevices(ctx context.Context, token string) ([]climacloud.Device, error) {
	c.mu.Lock()
	out := next(&c.devices)
	c.mu.Unlock()

	if out.Status != 0 {
		return nil, &climacloud.StatusError{StatusCode: out.Status, Endpoint: climacloud.DevicesPath}
	}
	if out.Malformed {
		return nil, climacloud.ErrMalformedResponse
	}

	devices := make([]climacloud.Device, len(out.Names))
	for i, name := range out.Names {
		devices[i] = climacloud.Device{ID: int64(i + 1), Name: name}
	}
	return devices, nil
}

// Run executes one scenario against a fresh service wired to in-memory
// collaborators.
func Run(t *testing.T, sc *Scenario) {
	t.Helper()
	ctx := context.Background()

	manager, err := entry.NewManager(&entry.ManagerConfig{Store: entry.NewMemoryStore()})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	issues := issue.NewMemoryRegistry()

	svc, err := link.NewService(&link.ServiceConfig{
		Authenticator: newScriptedCloud(sc.Cloud),
		Entries:       manager,
		Issues:        issues,
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	var seeded *entry.Entry
	if sc.Existing != nil {
		seeded = entry.New(sc.Existing.Identifier, sc.Existing.Credential)
		if err := manager.Create(ctx, seeded); err != nil {
			t.Fatalf("seeding existing entry failed: %v", err)
		}
	}

	var sess *link.Session
	switch sc.Mode {
	case "import":
		sess = svc.StartImport()
	case "reauth":
		sess, err = svc.StartReauth(ctx, seeded.ID)
		if err != nil {
			t.Fatalf("StartReauth failed: %v", err)
		}
	default:
		sess = svc.StartSetup()
	}

	identifier := firstIdentifier(sc)
	for i, step := range sc.Steps {
		runStep(t, sess, i, step)
	}

	checkOutcome(t, ctx, manager, issues, sc.Expect, identifier)
}

func runStep(t *testing.T, sess *link.Session, i int, step Step) {
	t.Helper()

	var input *flow.Input
	if step.Input != nil {
		input = &flow.Input{
			Identifier: step.Input.Identifier,
			Password:   step.Input.Password,
			Credential: step.Input.Credential,
		}
	}

	res, err := sess.Submit(context.Background(), input)
	if step.Expect.Kind == "error" {
		if err == nil {
			t.Fatalf("step %d: Submit succeeded, want error", i)
		}
	} else {
		if err != nil {
			t.Fatalf("step %d: Submit error = %v", i, err)
		}
		checkResult(t, i, res, step.Expect)
	}

	if step.Expect.State != "" && sess.State().String() != step.Expect.State {
		t.Errorf("step %d: state = %v, want %s", i, sess.State(), step.Expect.State)
	}
}

func checkResult(t *testing.T, i int, res flow.Result, expect StepExpect) {
	t.Helper()

	var wantKind flow.Kind
	switch expect.Kind {
	case "created":
		wantKind = flow.KindCreated
	case "aborted":
		wantKind = flow.KindAborted
	default:
		wantKind = flow.KindForm
	}
	if res.Kind != wantKind {
		t.Fatalf("step %d: result kind = %v, want %v", i, res.Kind, wantKind)
	}

	if expect.Reason != "" && string(res.Reason) != expect.Reason {
		t.Errorf("step %d: reason = %q, want %q", i, res.Reason, expect.Reason)
	}

	if len(expect.Errors) > 0 {
		if res.Form == nil {
			t.Fatalf("step %d: expected form errors but result has no form", i)
		}
		for field, want := range expect.Errors {
			if got := string(res.Form.Errors[field]); got != want {
				t.Errorf("step %d: error[%s] = %q, want %q", i, field, got, want)
			}
		}
		if len(res.Form.Errors) != len(expect.Errors) {
			t.Errorf("step %d: form errors = %v, want %v", i, res.Form.Errors, expect.Errors)
		}
	}
}

func checkOutcome(t *testing.T, ctx context.Context, manager *entry.Manager, issues *issue.MemoryRegistry, expect Outcome, identifier string) {
	t.Helper()

	entries, err := manager.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != expect.Entries {
		t.Errorf("entries = %d, want %d", len(entries), expect.Entries)
	}

	raised, err := issues.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	warnings, issueErrors := 0, 0
	for _, n := range raised {
		switch n.Severity {
		case issue.SeverityWarning:
			warnings++
		case issue.SeverityError:
			issueErrors++
		}
	}
	if warnings != expect.Warnings {
		t.Errorf("warnings = %d, want %d", warnings, expect.Warnings)
	}
	if issueErrors != expect.IssueErrors {
		t.Errorf("issue errors = %d, want %d", issueErrors, expect.IssueErrors)
	}

	if expect.Credential != "" {
		target := expect.Identifier
		if target == "" {
			target = identifier
		}
		stored, err := manager.GetByIdentifier(ctx, target)
		if err != nil {
			t.Fatalf("GetByIdentifier(%q) failed: %v", target, err)
		}
		if stored.Credential != expect.Credential {
			t.Errorf("stored credential = %q, want %q", stored.Credential, expect.Credential)
		}
	}
}

// firstIdentifier finds the account the scenario works on, for outcome
// checks that omit an explicit identifier.
func firstIdentifier(sc *Scenario) string {
	for _, step := range sc.Steps {
		if step.Input != nil && step.Input.Identifier != "" {
			return step.Input.Identifier
		}
	}
	if sc.Existing != nil {
		return sc.Existing.Identifier
	}
	return ""
}
