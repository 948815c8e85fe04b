// Package interactive provides the interactive command-line interface
// for the homeline-cloud hub.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/homeline-hub/homeline-go/pkg/entry"
	"github.com/homeline-hub/homeline-go/pkg/issue"
	"github.com/homeline-hub/homeline-go/pkg/link"
	"github.com/homeline-hub/homeline-go/pkg/version"
)

// mainPrompt is the command prompt. Form prompts replace it
// temporarily and restore it afterwards.
const mainPrompt = "homeline> "

// HubConfig provides configuration information to the interactive
// wizard. This interface allows the interactive layer to access hub
// settings without depending on the main package's config structure.
type HubConfig interface {
	// Backend returns the configured storage backend name.
	Backend() string

	// BaseURL returns the cloud API root.
	BaseURL() string

	// EventLogPath returns the flow event log path, empty when the
	// event log is disabled.
	EventLogPath() string
}

// Wizard handles interactive mode for homeline-cloud.
type Wizard struct {
	svc     *link.Service
	entries *entry.Manager
	issues  issue.Registry
	config  HubConfig
	rl      *readline.Instance
}

// New creates a new interactive wizard.
func New(svc *link.Service, entries *entry.Manager, issues issue.Registry, cfg HubConfig) (*Wizard, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          mainPrompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Wizard{
		svc:     svc,
		entries: entries,
		issues:  issues,
		config:  cfg,
		rl:      rl,
	}, nil
}

// Stdout returns a writer that properly coordinates with the readline
// input. Use this for log output to avoid interfering with the command
// prompt.
func (w *Wizard) Stdout() io.Writer {
	return w.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
func (w *Wizard) Stderr() io.Writer {
	return w.rl.Stderr()
}

// Run starts the interactive command loop.
func (w *Wizard) Run(ctx context.Context, cancel context.CancelFunc) {
	defer w.rl.Close()

	w.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := w.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(w.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			w.printHelp()

		case "link":
			w.cmdLink(ctx)

		case "reauth":
			w.cmdReauth(ctx, args)

		case "accounts", "ls":
			w.cmdAccounts(ctx)

		case "unlink":
			w.cmdUnlink(ctx, args)

		case "issues":
			w.cmdIssues(ctx)

		case "dismiss":
			w.cmdDismiss(ctx, args)

		case "events":
			w.cmdEvents(args)

		case "status":
			w.cmdStatus(ctx)

		case "quit", "exit", "q":
			fmt.Fprintln(w.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(w.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (w *Wizard) printHelp() {
	fmt.Fprintln(w.rl.Stdout(), `
Homeline ClimaCloud Commands:
  Accounts:
    link                  - Link a ClimaCloud account
    reauth <entry-id>     - Re-authenticate a linked account
    accounts              - List linked accounts
    unlink <entry-id>     - Remove a linked account

  Notices:
    issues                - List active repair notices
    dismiss <scope> <key> - Dismiss a notice

  Diagnostics:
    events [n] [mode]     - Show the last n flow events, optionally one mode
    status                - Show hub status

  General:
    help                  - Show this help
    quit                  - Exit the hub

  Entry IDs may be abbreviated; the account email works too.`)
}

// cmdStatus shows the hub status.
func (w *Wizard) cmdStatus(ctx context.Context) {
	entries, err := w.entries.List(ctx)
	if err != nil {
		fmt.Fprintf(w.rl.Stdout(), "Failed to read accounts: %v\n", err)
		return
	}
	notices, err := w.issues.List(ctx)
	if err != nil {
		fmt.Fprintf(w.rl.Stdout(), "Failed to read notices: %v\n", err)
		return
	}

	fmt.Fprintln(w.rl.Stdout(), "\nHub Status")
	fmt.Fprintln(w.rl.Stdout(), "-------------------------------------------")
	fmt.Fprintf(w.rl.Stdout(), "  Version:   %s\n", version.Current)
	fmt.Fprintf(w.rl.Stdout(), "  Cloud API: %s\n", w.config.BaseURL())
	fmt.Fprintf(w.rl.Stdout(), "  Backend:   %s\n", w.config.Backend())
	fmt.Fprintf(w.rl.Stdout(), "  Accounts:  %d\n", len(entries))
	fmt.Fprintf(w.rl.Stdout(), "  Notices:   %d\n", len(notices))
	fmt.Fprintln(w.rl.Stdout())
}
