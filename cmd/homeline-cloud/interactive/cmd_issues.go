package interactive

import (
	"context"
	"fmt"
	"strings"

	"github.com/homeline-hub/homeline-go/pkg/issue"
	"github.com/homeline-hub/homeline-go/pkg/version"
)

// cmdIssues lists active repair notices.
func (w *Wizard) cmdIssues(ctx context.Context) {
	notices, err := w.issues.List(ctx)
	if err != nil {
		fmt.Fprintf(w.rl.Stdout(), "Failed to list notices: %v\n", err)
		return
	}
	if len(notices) == 0 {
		fmt.Fprintln(w.rl.Stdout(), "No active notices")
		return
	}

	fmt.Fprintf(w.rl.Stdout(), "\nActive Notices (%d):\n", len(notices))
	fmt.Fprintln(w.rl.Stdout(), "-------------------------------------------")
	for _, n := range notices {
		fmt.Fprint(w.rl.Stdout(), formatIssue(n))
	}
	fmt.Fprintln(w.rl.Stdout())
}

// cmdDismiss removes one notice by scope and key.
func (w *Wizard) cmdDismiss(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(w.rl.Stdout(), "Usage: dismiss <scope> <key>")
		fmt.Fprintln(w.rl.Stdout(), "  Use 'issues' to list notices")
		return
	}

	if err := w.issues.Dismiss(ctx, args[0], args[1]); err != nil {
		fmt.Fprintf(w.rl.Stdout(), "Failed to dismiss: %v\n", err)
		return
	}
	fmt.Fprintln(w.rl.Stdout(), "Notice dismissed")
}

// formatIssue renders one notice as an indented block.
func formatIssue(n *issue.Issue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  [%s] %s/%s\n", n.Severity, n.Scope, n.Key)
	if n.BreaksIn != "" {
		fmt.Fprintf(&b, "      Stops working in: %s%s\n", n.BreaksIn, breaksAnnotation(n.BreaksIn))
	}
	if n.Fixable {
		fmt.Fprintf(&b, "      Fixable:          yes\n")
	}
	fmt.Fprintf(&b, "      Raised:           %s\n", n.RaisedAt.Format("2006-01-02 15:04"))
	return b.String()
}

// breaksAnnotation marks removal deadlines that are overdue or due in
// the next minor release, relative to the running platform version.
// Markers the wizard cannot parse stay unannotated.
func breaksAnnotation(breaksIn string) string {
	target, err := version.Parse(breaksIn)
	if err != nil {
		return ""
	}
	current := version.MustParse(version.Current)
	if current.AtOrAfter(target) {
		return " (overdue)"
	}
	if target.Compatible(current) && target.Minor == current.Minor+1 {
		return " (next release)"
	}
	return ""
}
