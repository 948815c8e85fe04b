package interactive

import (
	"context"
	"fmt"
	"strings"
)

// cmdAccounts lists all linked accounts.
func (w *Wizard) cmdAccounts(ctx context.Context) {
	entries, err := w.entries.List(ctx)
	if err != nil {
		fmt.Fprintf(w.rl.Stdout(), "Failed to list accounts: %v\n", err)
		return
	}
	if len(entries) == 0 {
		fmt.Fprintln(w.rl.Stdout(), "No linked accounts")
		return
	}

	fmt.Fprintf(w.rl.Stdout(), "\nLinked Accounts (%d):\n", len(entries))
	fmt.Fprintln(w.rl.Stdout(), "-------------------------------------------")
	for _, e := range entries {
		fmt.Fprintf(w.rl.Stdout(), "  ID: %s\n", shortID(e.ID))
		fmt.Fprintf(w.rl.Stdout(), "      Account: %s\n", e.Identifier)
		fmt.Fprintf(w.rl.Stdout(), "      Title:   %s\n", e.Title)
		fmt.Fprintf(w.rl.Stdout(), "      Linked:  %s\n", e.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Fprintln(w.rl.Stdout())
	}
}

// cmdUnlink removes a linked account.
func (w *Wizard) cmdUnlink(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(w.rl.Stdout(), "Usage: unlink <entry-id>")
		fmt.Fprintln(w.rl.Stdout(), "  Use 'accounts' to list entry IDs")
		return
	}

	entryID := w.resolveEntryID(ctx, args[0])
	if entryID == "" {
		fmt.Fprintf(w.rl.Stdout(), "Account not found: %s\n", args[0])
		return
	}

	if err := w.entries.Delete(ctx, entryID); err != nil {
		fmt.Fprintf(w.rl.Stdout(), "Failed to unlink: %v\n", err)
		return
	}
	fmt.Fprintln(w.rl.Stdout(), "Account unlinked")
}

// resolveEntryID accepts a full entry ID, a fragment of one, or the
// account identifier. Returns "" when nothing matches.
func (w *Wizard) resolveEntryID(ctx context.Context, arg string) string {
	if _, err := w.entries.Get(ctx, arg); err == nil {
		return arg
	}

	entries, err := w.entries.List(ctx)
	if err != nil {
		return ""
	}
	for _, e := range entries {
		if e.Identifier == arg || strings.Contains(e.ID, arg) {
			return e.ID
		}
	}
	return ""
}

// shortID truncates an entry ID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
