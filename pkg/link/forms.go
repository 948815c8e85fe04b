package link

import (
	"github.com/homeline-hub/homeline-go/pkg/flow"
)

// Form step and field identifiers.
const (
	// StepUser is the credential prompt for fresh setup.
	StepUser = "user"

	// StepReauthConfirm is the credential prompt during reauth.
	StepReauthConfirm = "reauth_confirm"

	// FieldIdentifier is the account identifier (email) field.
	FieldIdentifier = "identifier"

	// FieldPassword is the masked password field.
	FieldPassword = "password"
)

// setupForm is the prompt for a fresh setup attempt.
func setupForm() flow.Form {
	return flow.Form{
		StepID: StepUser,
		Fields: []flow.Field{
			{Key: FieldIdentifier, Kind: flow.FieldText, Required: true},
			{Key: FieldPassword, Kind: flow.FieldSecret, Required: true},
		},
	}
}

// reauthForm is the prompt for a reauth attempt, prefilled with the
// identifier of the entry being re-authenticated.
func reauthForm(identifier string) flow.Form {
	return flow.Form{
		StepID: StepReauthConfirm,
		Fields: []flow.Field{
			{Key: FieldIdentifier, Kind: flow.FieldText, Required: true, Default: identifier},
			{Key: FieldPassword, Kind: flow.FieldSecret, Required: true},
		},
	}
}
