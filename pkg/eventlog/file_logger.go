package eventlog

import (
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileLogger appends flow events to a CBOR file. Writes go straight
// through to the file so the wizard can read the log while the hub is
// running. Safe for concurrent use.
type FileLogger struct {
	mu       sync.Mutex
	file     *os.File
	encoder  *cbor.Encoder
	closed   bool
	writeErr error
}

// NewFileLogger opens or creates the event file at path and appends to
// it. The file is created 0600; events exclude credentials but still
// name accounts.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}
	return &FileLogger{
		file:    f,
		encoder: NewEncoder(f),
	}, nil
}

// Log appends one event. Write failures never disrupt the flow that
// produced the event; the first failure is kept and reported by Close.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	if err := l.encoder.Encode(event); err != nil && l.writeErr == nil {
		l.writeErr = err
	}
}

// Close closes the event file and reports the first write failure, if
// any. Close is idempotent; Log calls after Close are ignored.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	closeErr := l.file.Close()
	if l.writeErr != nil {
		return l.writeErr
	}
	return closeErr
}

// Compile-time interface satisfaction check.
var _ Logger = (*FileLogger)(nil)
