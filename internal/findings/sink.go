package findings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// Sink is the shared, append-only findings writer for one scan run. Workers
// append concurrently; a single mutex serializes element writes so the file
// always parses as one JSON array. If a run produces no findings the file is
// removed on Close instead of being left as an empty array.
type Sink struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	count  int
	closed bool
	logger hclog.Logger
}

// NewSink prepares a sink writing to path. Open must be called before Append.
func NewSink(path string, logger hclog.Logger) *Sink {
	return &Sink{path: path, logger: logger}
}

// Path returns the location of the findings file.
func (s *Sink) Path() string { return s.path }

// Count returns the number of findings appended so far.
func (s *Sink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Open creates the findings file and writes the opening array delimiter.
func (s *Sink) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create results directory: %w", err)
	}
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create findings file %q: %w", s.path, err)
	}
	if _, err := f.WriteString("[\n"); err != nil {
		f.Close()
		return fmt.Errorf("failed to initialize findings file %q: %w", s.path, err)
	}
	s.file = f
	return nil
}

// Append writes one finding as the next array element. Safe for concurrent
// use; the comma discipline is driven by the element count under the lock.
func (s *Sink) Append(f *Finding) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode finding: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil || s.closed {
		return fmt.Errorf("findings sink is not open")
	}
	if s.count > 0 {
		if _, err := s.file.WriteString(",\n"); err != nil {
			return fmt.Errorf("failed to write finding separator: %w", err)
		}
	}
	if _, err := s.file.Write(data); err != nil {
		return fmt.Errorf("failed to write finding: %w", err)
	}
	s.count++
	return nil
}

// Close writes the closing delimiter and closes the file. It runs exactly
// once; later calls are no-ops. With zero findings the file is deleted.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.file == nil {
		return nil
	}
	s.closed = true

	_, writeErr := s.file.WriteString("\n]")
	closeErr := s.file.Close()
	s.file = nil

	if s.count == 0 {
		if err := os.Remove(s.path); err != nil {
			s.logger.Warn("failed to remove empty findings file", "path", s.path, "error", err)
		}
		return nil
	}
	if writeErr != nil {
		return fmt.Errorf("failed to close findings array: %w", writeErr)
	}
	return closeErr
}
