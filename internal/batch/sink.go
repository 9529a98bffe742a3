package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sink delivers a finished artifact to its destination.
type Sink interface {
	Deliver(data []byte, filename string) error
}

// WriteError wraps a sink delivery failure; it aborts only the chapter whose
// artifact could not be written.
type WriteError struct {
	Filename string
	Err      error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to deliver %s: %v", e.Filename, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// DirSink writes artifacts into an output directory, creating it on first
// delivery.
type DirSink struct {
	Dir string
}

func (s *DirSink) Deliver(data []byte, filename string) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return &WriteError{Filename: filename, Err: err}
	}
	target := filepath.Join(s.Dir, sanitizeFilename(filename))
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return &WriteError{Filename: filename, Err: err}
	}
	return nil
}

// sanitizeFilename keeps chapter names from escaping the output directory.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", string(os.PathSeparator), "_")
	cleaned := strings.TrimSpace(replacer.Replace(name))
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return "untitled"
	}
	return cleaned
}
