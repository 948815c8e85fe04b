package interactive

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/homeline-hub/homeline-go/pkg/eventlog"
)

// defaultEventCount is how many recent events the events command shows.
const defaultEventCount = 10

// cmdEvents shows the tail of the flow event log, optionally limited
// to one flow mode.
func (w *Wizard) cmdEvents(args []string) {
	path := w.config.EventLogPath()
	if path == "" {
		fmt.Fprintln(w.rl.Stdout(), "Event log not enabled (set log.event_log in the config file)")
		return
	}

	limit := defaultEventCount
	var filter eventlog.Filter
	for _, arg := range args {
		switch arg {
		case "setup", "import", "reauth":
			filter.Mode = arg
		default:
			n, err := strconv.Atoi(arg)
			if err != nil || n <= 0 {
				fmt.Fprintln(w.rl.Stdout(), "Usage: events [count] [setup|import|reauth]")
				return
			}
			limit = n
		}
	}

	events, err := readEvents(path, filter)
	if err != nil {
		fmt.Fprintf(w.rl.Stdout(), "Failed to read event log: %v\n", err)
		return
	}
	if len(events) == 0 {
		fmt.Fprintln(w.rl.Stdout(), "No events recorded")
		return
	}
	if len(events) > limit {
		events = events[len(events)-limit:]
	}

	fmt.Fprintf(w.rl.Stdout(), "\nRecent Flow Events (%d):\n", len(events))
	fmt.Fprintln(w.rl.Stdout(), "-------------------------------------------")
	for _, ev := range events {
		fmt.Fprintln(w.rl.Stdout(), formatEvent(ev))
	}
	fmt.Fprintln(w.rl.Stdout())
}

// readEvents loads the events matching the filter from the log file.
func readEvents(path string, filter eventlog.Filter) ([]eventlog.Event, error) {
	reader, err := eventlog.NewFilteredReader(path, filter)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var events []eventlog.Event
	for {
		ev, err := reader.Next()
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
}

// formatEvent renders one flow event as a single line.
func formatEvent(ev eventlog.Event) string {
	ts := ev.Timestamp.Format("15:04:05")

	switch {
	case ev.StateChange != nil:
		if ev.StateChange.OldState == "" {
			return fmt.Sprintf("  [%s] %-6s state  %s (%s)",
				ts, ev.Mode, ev.StateChange.NewState, ev.StateChange.Reason)
		}
		return fmt.Sprintf("  [%s] %-6s state  %s -> %s (%s)",
			ts, ev.Mode, ev.StateChange.OldState, ev.StateChange.NewState, ev.StateChange.Reason)

	case ev.API != nil:
		return fmt.Sprintf("  [%s] %-6s api    %s status=%d in %s",
			ts, ev.Mode, ev.API.Endpoint, ev.API.Status, ev.API.Duration.Round(time.Millisecond))

	case ev.Store != nil:
		return fmt.Sprintf("  [%s] %-6s store  %s %s",
			ts, ev.Mode, ev.Store.Op, ev.Store.Identifier)

	case ev.Issue != nil:
		return fmt.Sprintf("  [%s] %-6s notice %s/%s [%s]",
			ts, ev.Mode, ev.Issue.Scope, ev.Issue.Key, ev.Issue.Severity)

	case ev.Error != nil:
		return fmt.Sprintf("  [%s] %-6s error  %s: %s",
			ts, ev.Mode, ev.Error.Context, ev.Error.Message)

	default:
		return fmt.Sprintf("  [%s] %-6s %s", ts, ev.Mode, ev.Category)
	}
}
