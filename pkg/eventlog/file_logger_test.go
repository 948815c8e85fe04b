package eventlog

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestFileLoggerCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.hlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("log file was not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file mode = %o, want 0600", perm)
	}
}

func TestFileLoggerWritesCBOR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.hlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	event := Event{
		Timestamp: time.Now(),
		FlowID:    "flow-123",
		Mode:      "setup",
		Category:  CategoryState,
		StateChange: &StateChangeEvent{
			NewState: "awaiting-input",
		},
	}

	logger.Log(event)
	logger.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("log file is empty")
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if decoded.FlowID != event.FlowID {
		t.Errorf("FlowID: got %q, want %q", decoded.FlowID, event.FlowID)
	}
	if decoded.StateChange == nil {
		t.Error("StateChange is nil")
	} else if decoded.StateChange.NewState != "awaiting-input" {
		t.Errorf("NewState: got %q, want %q", decoded.StateChange.NewState, "awaiting-input")
	}
}

func TestFileLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.hlog")

	logger1, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger1.Log(Event{Timestamp: time.Now(), FlowID: "flow-1", Category: CategoryState})
	logger1.Close()

	// Open again and write a second event
	logger2, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger second open failed: %v", err)
	}
	logger2.Log(Event{Timestamp: time.Now(), FlowID: "flow-2", Category: CategoryAPI})
	logger2.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	decoder := NewDecoder(bytes.NewReader(data))
	var events []Event
	for {
		var event Event
		if err := decoder.Decode(&event); err != nil {
			break
		}
		events = append(events, event)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].FlowID != "flow-1" {
		t.Errorf("first event FlowID: got %q, want %q", events[0].FlowID, "flow-1")
	}
	if events[1].FlowID != "flow-2" {
		t.Errorf("second event FlowID: got %q, want %q", events[1].FlowID, "flow-2")
	}
}

func TestFileLoggerThreadSafe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.hlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	const numGoroutines = 10
	const eventsPerGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < eventsPerGoroutine; j++ {
				logger.Log(Event{
					Timestamp: time.Now(),
					FlowID:    "flow-" + string(rune('A'+id)),
					Category:  CategoryState,
				})
			}
		}(i)
	}

	wg.Wait()
	logger.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	decoder := NewDecoder(bytes.NewReader(data))
	count := 0
	for {
		var event Event
		if err := decoder.Decode(&event); err != nil {
			break
		}
		count++
	}

	expectedCount := numGoroutines * eventsPerGoroutine
	if count != expectedCount {
		t.Errorf("event count: got %d, want %d", count, expectedCount)
	}
}

func TestFileLoggerClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.hlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	logger.Log(Event{Timestamp: time.Now(), FlowID: "flow-123", Category: CategoryState})

	if err := logger.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	// Double close should not panic or error
	if err := logger.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	// Logging after close should not panic
	logger.Log(Event{Timestamp: time.Now(), FlowID: "flow-456", Category: CategoryState})
}

func TestFileLoggerReportsWriteFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.hlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	// Pull the file out from under the encoder to force a write error.
	logger.file.Close()
	logger.Log(Event{Timestamp: time.Now(), FlowID: "flow-123", Category: CategoryState})

	if err := logger.Close(); err == nil {
		t.Error("Close did not report the lost event")
	}
}
