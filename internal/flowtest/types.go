// Package flowtest executes declarative linking-flow scenarios loaded
// from YAML. A scenario scripts the cloud's answer to each API call,
// submits a sequence of inputs to one flow session and asserts the
// per-step results plus the final store and notice state.
package flowtest

// Scenario is one scripted linking flow exercise.
type Scenario struct {
	// ID is the unique scenario identifier (e.g. "setup-wrong-password").
	ID string `yaml:"id"`

	// Name is a human-readable name for the scenario.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// Mode selects the flow variant: "setup", "import" or "reauth".
	Mode string `yaml:"mode"`

	// Existing seeds the store with one entry before the flow starts.
	// Required for reauth scenarios.
	Existing *ExistingEntry `yaml:"existing,omitempty"`

	// Cloud scripts the authenticator's per-call behavior.
	Cloud CloudScript `yaml:"cloud"`

	// Steps are the submissions to run in order.
	Steps []Step `yaml:"steps"`

	// Expect asserts the state of the world after the last step.
	Expect Outcome `yaml:"expect"`
}

// ExistingEntry seeds the store before the scenario runs.
type ExistingEntry struct {
	Identifier string `yaml:"identifier"`
	Credential string `yaml:"credential"`
}

// CloudScript holds the scripted outcomes for the two API calls. Each
// call consumes the next outcome from its queue; the final outcome
// repeats once the queue is exhausted. An empty queue means every call
// succeeds with defaults.
type CloudScript struct {
	// Logins scripts the credential exchange calls.
	Logins []CallOutcome `yaml:"logins,omitempty"`

	// Devices scripts the device enumeration calls.
	Devices []CallOutcome `yaml:"devices,omitempty"`
}

// CallOutcome is the scripted result of one API call. Zero value means
// success with defaults.
type CallOutcome struct {
	// Token is returned by a successful login. Defaults to
	// "scenario-token".
	Token string `yaml:"token,omitempty"`

	// Status fails the call with that HTTP status when non-zero.
	Status int `yaml:"status,omitempty"`

	// Malformed fails the call with a malformed-response error.
	Malformed bool `yaml:"malformed,omitempty"`

	// Names are the device names a successful enumeration returns.
	Names []string `yaml:"names,omitempty"`
}

// Step is one submission to the flow session.
type Step struct {
	// Input is the submitted form data. Omit it to request the current
	// prompt instead of advancing the flow.
	Input *StepInput `yaml:"input,omitempty"`

	// Expect asserts the result of this submission.
	Expect StepExpect `yaml:"expect"`
}

// StepInput carries the submitted field values.
type StepInput struct {
	Identifier string `yaml:"identifier,omitempty"`
	Password   string `yaml:"password,omitempty"`
	Credential string `yaml:"credential,omitempty"`
}

// StepExpect asserts one submission's outcome.
type StepExpect struct {
	// Kind is the expected result: "form", "created", "aborted" or
	// "error" (the submission returns a non-nil error).
	Kind string `yaml:"kind"`

	// Reason is the expected abort reason ("aborted" only).
	Reason string `yaml:"reason,omitempty"`

	// Errors are the expected field errors ("form" only).
	Errors map[string]string `yaml:"errors,omitempty"`

	// State is the expected session state after the submission.
	State string `yaml:"state,omitempty"`
}

// Outcome asserts the final state of the store and the notice registry.
type Outcome struct {
	// Entries is the expected number of stored records.
	Entries int `yaml:"entries"`

	// Warnings is the expected number of platform-scoped warnings.
	Warnings int `yaml:"warnings"`

	// IssueErrors is the expected number of integration-scoped errors.
	IssueErrors int `yaml:"issue_errors"`

	// Credential, when set, is the expected stored credential for the
	// scenario's account.
	Credential string `yaml:"credential,omitempty"`

	// Identifier names the account Credential refers to. Defaults to
	// the identifier of the first step that carries one.
	Identifier string `yaml:"identifier,omitempty"`
}

// LoadError reports a scenario that could not be loaded.
type LoadError struct {
	// File is the path that failed to load.
	File string

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	if e.File == "" {
		return e.Message
	}
	return e.File + ": " + e.Message
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
