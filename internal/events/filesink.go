package events

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Sink receives transcript events.
type Sink interface {
	Write(events []TranscriptEvent) error
	Close() error
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) Write([]TranscriptEvent) error { return nil }
func (NopSink) Close() error { return nil }

// Redactor removes secrets from event text before it is persisted.
type Redactor interface {
	Scrub(input string) string
}

// FileSink writes TranscriptEvents to a JSONL file.
// It is safe for concurrent use from multiple goroutines.
type FileSink struct {
	path     string
	file     *os.File
	writer   *bufio.Writer
	redactor Redactor
	mu       sync.Mutex
}

// DefaultFilename is the default filename for the transcript file.
const DefaultFilename = "transcript.jsonl"

// NewFileSink creates a new FileSink that writes to dir/transcript.jsonl,
// creating dir if needed. If the file already exists, new events will be
// appended. A nil redactor stores content as-is.
func NewFileSink(dir string, redactor Redactor) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create transcript directory: %w", err)
	}
	path := filepath.Join(dir, DefaultFilename)

	// Tool inputs and results may be sensitive.
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript file: %w", err)
	}

	return &FileSink{
		path:     path,
		file:     file,
		writer:   bufio.NewWriter(file),
		redactor: redactor,
	}, nil
}

// Write writes a batch of events to the JSONL file.
// Each event is written as a single JSON line.
func (s *FileSink) Write(events []TranscriptEvent) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return fmt.Errorf("transcript sink is closed")
	}

	for _, event := range events {
		if s.redactor != nil {
			event.Content = s.redactor.Scrub(event.Content)
			event.Summary = s.redactor.Scrub(event.Summary)
			event.ToolInput = s.redactor.Scrub(event.ToolInput)
		}
		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}

		if _, err := s.writer.Write(data); err != nil {
			return fmt.Errorf("failed to write event: %w", err)
		}
		if err := s.writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("failed to write newline: %w", err)
		}
	}

	// Flush to ensure events are persisted
	if err := s.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush events: %w", err)
	}

	return nil
}

// Flush flushes any buffered data to the underlying file.
func (s *FileSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}
	return nil
}

// Close flushes any remaining data and closes the file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}

	// Flush any remaining buffered data
	if err := s.writer.Flush(); err != nil {
		// Still try to close the file even if flush fails
		_ = s.file.Close()
		s.file = nil
		return fmt.Errorf("failed to flush before close: %w", err)
	}

	if err := s.file.Close(); err != nil {
		s.file = nil
		return fmt.Errorf("failed to close transcript file: %w", err)
	}

	s.file = nil
	return nil
}

// Path returns the path to the transcript file.
func (s *FileSink) Path() string {
	return s.path
}

// ReadEvents reads all events from a JSONL transcript.
func ReadEvents(path string) ([]TranscriptEvent, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var events []TranscriptEvent
	scanner := bufio.NewScanner(file)

	// Set a larger buffer for potentially large JSON lines (1MB max)
	const maxLineSize = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event TranscriptEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("failed to parse event on line %d: %w", lineNum, err)
		}
		events = append(events, event)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transcript file: %w", err)
	}

	return events, nil
}

// FilterByType filters events by event type.
func FilterByType(events []TranscriptEvent, types ...EventType) []TranscriptEvent {
	if len(types) == 0 {
		return events
	}

	typeSet := make(map[EventType]bool)
	for _, t := range types {
		typeSet[t] = true
	}

	var filtered []TranscriptEvent
	for _, event := range events {
		if typeSet[event.Type] {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

// FilterByScenario filters events by scenario name.
// An empty name returns all events.
func FilterByScenario(events []TranscriptEvent, scenario string) []TranscriptEvent {
	if scenario == "" {
		return events
	}

	var filtered []TranscriptEvent
	for _, event := range events {
		if event.Scenario == scenario {
			filtered = append(filtered, event)
		}
	}
	return filtered
}
