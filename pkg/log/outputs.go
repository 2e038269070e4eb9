package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// ConsoleOutput writes log entries to stdout or stderr.
type ConsoleOutput struct {
	mu     sync.Mutex
	writer io.Writer
}

// ConsoleOutputOption configures a ConsoleOutput.
type ConsoleOutputOption func(*ConsoleOutput)

// WithStderr sends console output to stderr.
func WithStderr() ConsoleOutputOption {
	return func(o *ConsoleOutput) {
		o.writer = os.Stderr
	}
}

// WithStdout sends console output to stdout.
func WithStdout() ConsoleOutputOption {
	return func(o *ConsoleOutput) {
		o.writer = os.Stdout
	}
}

// NewConsoleOutput creates a console output, stderr unless configured.
func NewConsoleOutput(options ...ConsoleOutputOption) *ConsoleOutput {
	o := &ConsoleOutput{writer: os.Stderr}
	for _, option := range options {
		option(o)
	}
	return o
}

// Write writes a formatted entry.
func (o *ConsoleOutput) Write(_ *Entry, formatted []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, err := o.writer.Write(formatted)
	return err
}

// Close is a no-op for console output.
func (o *ConsoleOutput) Close() error {
	return nil
}

// WriterOutput writes log entries to an arbitrary writer.
type WriterOutput struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterOutput creates an output over w.
func NewWriterOutput(w io.Writer) *WriterOutput {
	return &WriterOutput{w: w}
}

// Write writes a formatted entry.
func (o *WriterOutput) Write(_ *Entry, formatted []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, err := o.w.Write(formatted)
	return err
}

// Close closes the writer when it is an io.Closer.
func (o *WriterOutput) Close() error {
	if c, ok := o.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// FileOutput appends log entries to a file.
type FileOutput struct {
	mu   sync.Mutex
	file *os.File
}

// NewFileOutput opens path for appending, creating parent directories.
func NewFileOutput(path string) (*FileOutput, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return &FileOutput{file: f}, nil
}

// Write writes a formatted entry.
func (o *FileOutput) Write(_ *Entry, formatted []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, err := o.file.Write(formatted)
	return err
}

// Close closes the file.
func (o *FileOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.file.Close()
}

// NullOutput discards all log entries.
type NullOutput struct{}

// NewNullOutput creates a NullOutput.
func NewNullOutput() *NullOutput {
	return &NullOutput{}
}

// Write discards the entry.
func (o *NullOutput) Write(*Entry, []byte) error { return nil }

// Close does nothing.
func (o *NullOutput) Close() error { return nil }
