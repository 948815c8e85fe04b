package eventlog

import (
	"context"
	"log/slog"
)

// SlogAdapter writes flow events to an slog.Logger.
// Useful for development when you want to see flow events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("flow_id", event.FlowID),
		slog.String("category", event.Category.String()),
	}

	// Add optional identifiers
	if event.Mode != "" {
		attrs = append(attrs, slog.String("mode", event.Mode))
	}
	if event.EntryID != "" {
		attrs = append(attrs, slog.String("entry_id", event.EntryID))
	}

	// Add type-specific attributes
	switch {
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.API != nil:
		attrs = append(attrs, slog.String("endpoint", event.API.Endpoint))
		if event.API.Status != 0 {
			attrs = append(attrs, slog.Int("status", event.API.Status))
		}
		if event.API.Duration != 0 {
			attrs = append(attrs, slog.Duration("duration", event.API.Duration))
		}
	case event.Store != nil:
		attrs = append(attrs,
			slog.String("op", event.Store.Op.String()),
			slog.String("identifier", event.Store.Identifier),
		)
	case event.Issue != nil:
		attrs = append(attrs,
			slog.String("issue_scope", event.Issue.Scope),
			slog.String("issue_key", event.Issue.Key),
			slog.String("severity", event.Issue.Severity.String()),
		)
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
		if event.Error.Kind != "" {
			attrs = append(attrs, slog.String("error_kind", event.Error.Kind))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "flow", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
