package eventlog

// Logger is the interface applications implement to receive flow events.
// Pass nil or NopLogger to disable logging.
type Logger interface {
	// Log records a flow event. Implementations must be thread-safe.
	// The event should be processed quickly or queued; blocking
	// slows down flows.
	Log(event Event)
}

// NopLogger discards all events. Use when logging is disabled.
// NopLogger is safe for concurrent use and usable as a zero value.
type NopLogger struct{}

// Log discards the event.
func (NopLogger) Log(Event) {}

// Compile-time interface satisfaction check.
var _ Logger = NopLogger{}
