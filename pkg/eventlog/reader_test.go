package eventlog

import (
	"io"
	"path/filepath"
	"testing"
	"time"
)

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.hlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test log: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func readAll(t *testing.T, reader *Reader) []Event {
	t.Helper()
	var read []Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		read = append(read, event)
	}
	return read
}

func TestReaderIteratesEvents(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), FlowID: "flow-1", Mode: "setup", Category: CategoryState},
		{Timestamp: time.Now(), FlowID: "flow-2", Mode: "import", Category: CategoryAPI},
		{Timestamp: time.Now(), FlowID: "flow-3", Mode: "reauth", Category: CategoryStore},
	}

	reader, err := NewReader(createTestLogFile(t, events))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)
	if len(read) != 3 {
		t.Fatalf("got %d events, want 3", len(read))
	}
	if read[0].FlowID != "flow-1" {
		t.Errorf("first event FlowID = %q, want %q", read[0].FlowID, "flow-1")
	}
	if read[2].FlowID != "flow-3" {
		t.Errorf("last event FlowID = %q, want %q", read[2].FlowID, "flow-3")
	}
}

func TestReaderHandlesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.hlog")
	logger, _ := NewFileLogger(path)
	logger.Close()

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	event, err := reader.Next()
	if err != io.EOF {
		t.Errorf("expected io.EOF, got err=%v, event=%+v", err, event)
	}
}

func TestReaderFilterByFlowID(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), FlowID: "flow-A", Category: CategoryState},
		{Timestamp: time.Now(), FlowID: "flow-B", Category: CategoryState},
		{Timestamp: time.Now(), FlowID: "flow-A", Category: CategoryAPI},
	}

	reader, err := NewFilteredReader(createTestLogFile(t, events), Filter{FlowID: "flow-A"})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)
	if len(read) != 2 {
		t.Fatalf("got %d events, want 2", len(read))
	}
	for _, e := range read {
		if e.FlowID != "flow-A" {
			t.Errorf("filtered event has FlowID %q", e.FlowID)
		}
	}
}

func TestReaderFilterByCategory(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), FlowID: "flow-1", Category: CategoryState},
		{Timestamp: time.Now(), FlowID: "flow-1", Category: CategoryAPI},
		{Timestamp: time.Now(), FlowID: "flow-1", Category: CategoryError},
	}

	cat := CategoryError
	reader, err := NewFilteredReader(createTestLogFile(t, events), Filter{Category: &cat})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)
	if len(read) != 1 {
		t.Fatalf("got %d events, want 1", len(read))
	}
	if read[0].Category != CategoryError {
		t.Errorf("category = %v, want ERROR", read[0].Category)
	}
}

func TestReaderFilterByMode(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), FlowID: "flow-1", Mode: "setup", Category: CategoryState},
		{Timestamp: time.Now(), FlowID: "flow-2", Mode: "reauth", Category: CategoryState},
	}

	reader, err := NewFilteredReader(createTestLogFile(t, events), Filter{Mode: "reauth"})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)
	if len(read) != 1 || read[0].FlowID != "flow-2" {
		t.Errorf("filter by mode returned wrong events: %+v", read)
	}
}

func TestReaderFilterByTimeRange(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	events := []Event{
		{Timestamp: base, FlowID: "flow-1", Category: CategoryState},
		{Timestamp: base.Add(time.Minute), FlowID: "flow-2", Category: CategoryState},
		{Timestamp: base.Add(2 * time.Minute), FlowID: "flow-3", Category: CategoryState},
	}

	start := base.Add(30 * time.Second)
	end := base.Add(90 * time.Second)
	reader, err := NewFilteredReader(createTestLogFile(t, events), Filter{
		TimeStart: &start,
		TimeEnd:   &end,
	})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)
	if len(read) != 1 || read[0].FlowID != "flow-2" {
		t.Errorf("time range filter returned wrong events: %+v", read)
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "missing.hlog")); err == nil {
		t.Error("NewReader on missing file should error")
	}
}
