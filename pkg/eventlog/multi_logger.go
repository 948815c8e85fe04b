package eventlog

// MultiLogger fans one event out to several loggers in order.
// The hub combines a FileLogger with a SlogAdapter this way when
// debug logging is on, so the flow history lands in the event file
// and the console at the same time.
type MultiLogger struct {
	targets []Logger
}

// NewMultiLogger creates a MultiLogger over the given targets.
// Nil targets are skipped so callers can pass optional loggers directly.
func NewMultiLogger(targets ...Logger) *MultiLogger {
	m := &MultiLogger{targets: make([]Logger, 0, len(targets))}
	for _, t := range targets {
		if t != nil {
			m.targets = append(m.targets, t)
		}
	}
	return m
}

// Log forwards the event to every target.
func (m *MultiLogger) Log(event Event) {
	for _, t := range m.targets {
		t.Log(event)
	}
}

// Compile-time interface satisfaction check.
var _ Logger = (*MultiLogger)(nil)
