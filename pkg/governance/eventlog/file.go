package eventlog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// maxLineBytes bounds a single JSON line when reading a log back.
const maxLineBytes = 1 << 20

// FileSink appends events to a file as JSON lines.
type FileSink struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	closed bool
}

// NewFileSink opens path for appending, creating it and its directory if
// needed.
func NewFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, NewSinkError("file", "mkdir", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, NewSinkError("file", "open", err)
	}
	return &FileSink{path: path, file: f}, nil
}

// Append writes e as one JSON line.
func (s *FileSink) Append(_ context.Context, e Event) error {
	line, err := json.Marshal(e)
	if err != nil {
		return NewSinkError("file", "encode", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if _, err := s.file.Write(line); err != nil {
		return NewSinkError("file", "write", err)
	}
	return nil
}

// Close closes the underlying file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.file.Close()
}

// Path returns the log file location.
func (s *FileSink) Path() string {
	return s.path
}

// ReadFile parses a JSON-lines event log and returns the events matching f.
// Lines that fail to parse are skipped and counted in skipped.
func ReadFile(path string, f Filter) (events []Event, skipped int, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, NewSinkError("file", "open", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Event
		if err := json.Unmarshal(line, &e); err != nil {
			skipped++
			continue
		}
		if !f.Matches(e) {
			continue
		}
		events = append(events, e)
		if f.Limit > 0 && len(events) >= f.Limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return events, skipped, NewSinkError("file", "scan", fmt.Errorf("%s: %w", path, err))
	}
	return events, skipped, nil
}
