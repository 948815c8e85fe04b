package interactive

import (
	"context"
	"fmt"
	"strings"

	"github.com/homeline-hub/homeline-go/pkg/flow"
	"github.com/homeline-hub/homeline-go/pkg/link"
)

// cmdLink runs the interactive setup flow for a fresh account.
func (w *Wizard) cmdLink(ctx context.Context) {
	sess := w.svc.StartSetup()
	w.runFlow(ctx, sess)
}

// cmdReauth runs the re-authentication flow for an existing entry.
func (w *Wizard) cmdReauth(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(w.rl.Stdout(), "Usage: reauth <entry-id>")
		fmt.Fprintln(w.rl.Stdout(), "  Use 'accounts' to list entry IDs")
		return
	}

	entryID := w.resolveEntryID(ctx, args[0])
	if entryID == "" {
		fmt.Fprintf(w.rl.Stdout(), "Account not found: %s\n", args[0])
		return
	}

	sess, err := w.svc.StartReauth(ctx, entryID)
	if err != nil {
		fmt.Fprintf(w.rl.Stdout(), "Failed to start re-authentication: %v\n", err)
		return
	}
	w.runFlow(ctx, sess)
}

// runFlow drives one linking session to a terminal outcome, prompting
// for every form the flow emits along the way.
func (w *Wizard) runFlow(ctx context.Context, sess *link.Session) {
	res, err := sess.Submit(ctx, nil)
	for {
		if err != nil {
			fmt.Fprintf(w.rl.Stdout(), "Flow failed: %v\n", err)
			return
		}

		switch res.Kind {
		case flow.KindForm:
			w.printFormErrors(res.Form)
			input, ok := w.promptForm(res.Form)
			if !ok {
				fmt.Fprintln(w.rl.Stdout(), "Cancelled")
				return
			}
			res, err = sess.Submit(ctx, input)

		case flow.KindCreated:
			fmt.Fprintf(w.rl.Stdout(), "Linked %s (entry %s)\n", res.Title, shortID(res.EntryID))
			return

		case flow.KindAborted:
			fmt.Fprintln(w.rl.Stdout(), abortText(res.Reason))
			return

		default:
			fmt.Fprintf(w.rl.Stdout(), "Unexpected flow result: %s\n", res.Kind)
			return
		}
	}
}

// printFormErrors shows errors from the previous attempt, form-wide
// errors first.
func (w *Wizard) printFormErrors(form *flow.Form) {
	if len(form.Errors) == 0 {
		return
	}
	if code, ok := form.Errors[flow.FieldBase]; ok {
		fmt.Fprintf(w.rl.Stdout(), "Error: %s\n", errorText(code))
	}
	for _, field := range form.Fields {
		if code, ok := form.Errors[field.Key]; ok {
			fmt.Fprintf(w.rl.Stdout(), "Error (%s): %s\n", fieldLabel(field.Key), errorText(code))
		}
	}
}

// promptForm collects a value for each form field. It returns false if
// the user cancelled with an interrupt or EOF.
func (w *Wizard) promptForm(form *flow.Form) (*flow.Input, bool) {
	input := &flow.Input{}
	for _, field := range form.Fields {
		value, ok := w.promptField(field)
		if !ok {
			return nil, false
		}
		switch field.Key {
		case link.FieldIdentifier:
			input.Identifier = value
		case link.FieldPassword:
			input.Password = value
		}
	}
	return input, true
}

// promptField reads one field, masking secrets and falling back to the
// prefilled default on empty input.
func (w *Wizard) promptField(field flow.Field) (string, bool) {
	prompt := fieldPrompt(field)

	if field.Kind == flow.FieldSecret {
		value, err := w.rl.ReadPassword(prompt)
		if err != nil {
			return "", false
		}
		return string(value), true
	}

	w.rl.SetPrompt(prompt)
	defer w.rl.SetPrompt(mainPrompt)

	line, err := w.rl.Readline()
	if err != nil {
		return "", false
	}
	value := strings.TrimSpace(line)
	if value == "" {
		value = field.Default
	}
	return value, true
}

// fieldPrompt builds the display prompt for a form field, showing the
// prefilled default when one exists.
func fieldPrompt(field flow.Field) string {
	label := fieldLabel(field.Key)
	if field.Default != "" {
		return fmt.Sprintf("%s [%s]: ", label, field.Default)
	}
	return label + ": "
}

// fieldLabel maps a form field key to its display label.
func fieldLabel(key string) string {
	switch key {
	case link.FieldIdentifier:
		return "Email"
	case link.FieldPassword:
		return "Password"
	default:
		return key
	}
}

// errorText maps a recoverable flow error code to display text.
func errorText(code flow.ErrorCode) string {
	switch code {
	case flow.ErrorInvalidAuth:
		return "ClimaCloud rejected the email or password"
	case flow.ErrorCannotConnect:
		return "could not reach ClimaCloud"
	default:
		return string(code)
	}
}

// abortText maps a terminal abort reason to display text.
func abortText(reason flow.AbortReason) string {
	switch reason {
	case flow.AbortAlreadyConfigured:
		return "This account is already linked"
	case flow.AbortReauthSuccessful:
		return "Re-authentication successful, credential updated"
	case flow.AbortInvalidAuth:
		return "Aborted: ClimaCloud rejected the credentials"
	case flow.AbortCannotConnect:
		return "Aborted: could not reach ClimaCloud"
	default:
		return fmt.Sprintf("Aborted: %s", reason)
	}
}
