// Package link implements the account linking flows for the ClimaCloud
// integration: interactive fresh setup, non-interactive legacy import
// and re-authentication of an existing entry.
//
// A flow is a short-lived state machine. The Service creates one
// Session per attempt; the host drives it by calling Submit, first with
// nil input to obtain the prompt, then with the user's values. Each
// submission authenticates against the cloud under a single deadline,
// classifies any failure into a user-facing error code and either
// re-emits the prompt, registers the account record or terminates.
//
// # Modes
//
// Fresh setup (StartSetup) prompts for identifier and password,
// exchanges them for a bearer token, probes device enumeration with the
// token and registers the record. Legacy import (StartImport or the
// ImportAccount convenience) receives an already-issued token from the
// caller, validates it via device enumeration only and raises a
// deprecation notice either way. Re-authentication (StartReauth) loads
// an existing entry, prompts again and on success replaces the stored
// credential in place, scheduling a background reload; it is the one
// flow that stays alive after a classified failure so the user can
// retry.
//
// # Error classification
//
// Authenticator failures are classified into invalid_auth (rejected
// credentials) or cannot_connect (transport failure or timeout).
// Anything outside that known surface propagates to the caller
// unchanged; such errors are defects, not form errors.
//
// Collaborators are consumed through small interfaces (Authenticator,
// EntryService, IssueSink) so sessions can be exercised with fakes.
package link
