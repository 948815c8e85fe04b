package flow

// ErrorCode identifies a recoverable, user-facing failure attached to a
// form field. The renderer maps codes to display text.
type ErrorCode string

const (
	// ErrorInvalidAuth - the remote service rejected the credentials.
	ErrorInvalidAuth ErrorCode = "invalid_auth"

	// ErrorCannotConnect - transport failure or timeout reaching the
	// remote service.
	ErrorCannotConnect ErrorCode = "cannot_connect"
)

// AbortReason returns the code as an abort reason, for non-interactive
// flows that terminate instead of re-prompting.
func (c ErrorCode) AbortReason() AbortReason {
	return AbortReason(c)
}

// FieldBase is the conventional error key for failures that concern the
// whole form rather than a single field.
const FieldBase = "base"

// AbortReason identifies why a flow terminated without creating a record.
type AbortReason string

const (
	// AbortAlreadyConfigured - a record for this identifier already exists.
	AbortAlreadyConfigured AbortReason = "already_configured"

	// AbortReauthSuccessful - re-authentication finished; the existing
	// record was updated in place. A terminal outcome, not an error.
	AbortReauthSuccessful AbortReason = "reauth_successful"

	// AbortInvalidAuth - non-interactive flow gave up after an
	// authentication rejection.
	AbortInvalidAuth AbortReason = "invalid_auth"

	// AbortCannotConnect - non-interactive flow gave up after a
	// transport failure.
	AbortCannotConnect AbortReason = "cannot_connect"
)

// FieldKind describes how a form field is rendered and captured.
type FieldKind uint8

const (
	// FieldText is a plain visible text input.
	FieldText FieldKind = 0

	// FieldSecret is a masked input whose value must never be echoed
	// or logged.
	FieldSecret FieldKind = 1
)

// String returns the field kind name.
func (k FieldKind) String() string {
	switch k {
	case FieldText:
		return "TEXT"
	case FieldSecret:
		return "SECRET"
	default:
		return "UNKNOWN"
	}
}

// Field describes one input requested from the user.
type Field struct {
	// Key identifies the field in Input and in error maps.
	Key string

	// Kind selects the rendering (plain or masked).
	Kind FieldKind

	// Required fields must be non-empty on submission.
	Required bool

	// Default is an optional prefill shown to the user.
	Default string
}

// Form is a schema-driven prompt emitted by a non-terminal flow step.
type Form struct {
	// StepID names the step this form belongs to.
	StepID string

	// Fields lists the requested inputs in display order.
	Fields []Field

	// Errors annotates fields (or FieldBase) from the previous attempt.
	// Empty on the first prompt.
	Errors map[string]ErrorCode
}

// WithErrors returns a copy of the form annotated with the given errors.
func (f *Form) WithErrors(errs map[string]ErrorCode) *Form {
	c := *f
	c.Errors = errs
	return &c
}

// Input carries the values submitted for a form. Fields that were not part
// of the form are left empty; Credential is set only on the non-interactive
// import path, which supplies an already-issued token instead of a password.
type Input struct {
	Identifier string
	Password   string
	Credential string
}

// Kind discriminates the outcome of advancing a flow one step.
type Kind uint8

const (
	// KindForm - the flow needs (more) input; Result.Form is set.
	KindForm Kind = 0

	// KindCreated - terminal success; a record was created.
	KindCreated Kind = 1

	// KindAborted - terminal; Result.Reason explains why.
	KindAborted Kind = 2
)

// String returns the result kind name.
func (k Kind) String() string {
	switch k {
	case KindForm:
		return "FORM"
	case KindCreated:
		return "CREATED"
	case KindAborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// Result is the outcome of advancing a flow one step.
type Result struct {
	// Kind discriminates which of the remaining fields are meaningful.
	Kind Kind

	// Form is the next prompt (KindForm only).
	Form *Form

	// Reason explains the termination (KindAborted only).
	Reason AbortReason

	// Title is the human-readable name of the created record
	// (KindCreated only).
	Title string

	// EntryID references the stored record: the created one on
	// KindCreated, the updated one on an AbortReauthSuccessful abort.
	EntryID string

	// Identifier and Credential are the persisted payload
	// (KindCreated only). Credential is a secret.
	Identifier string
	Credential string
}
