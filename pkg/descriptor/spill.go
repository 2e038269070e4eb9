package descriptor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// ErrBufferClosed is returned when writing to a closed SpillBuffer.
var ErrBufferClosed = errors.New("spill buffer is closed")

// SpillBuffer collects output in memory up to a limit and moves it to a
// temporary file once the limit is crossed. It is safe for one writer and
// concurrent readers.
type SpillBuffer struct {
	mu     sync.Mutex
	limit  int64
	dir    string
	mem    bytes.Buffer
	file   *os.File
	size   int64
	closed bool
}

// NewSpillBuffer creates a buffer holding at most limit bytes in memory.
// dir is where spill files go; empty means os.TempDir().
func NewSpillBuffer(limit int64, dir string) (*SpillBuffer, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("invalid memory limit: %d", limit)
	}
	if dir == "" {
		dir = os.TempDir()
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("spill directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("spill path is not a directory: %s", dir)
	}

	return &SpillBuffer{limit: limit, dir: dir}, nil
}

// Write appends p, spilling to disk when the memory limit is exceeded.
func (b *SpillBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrBufferClosed
	}

	if b.file == nil && int64(b.mem.Len()+len(p)) > b.limit {
		if err := b.spill(); err != nil {
			return 0, err
		}
	}

	var n int
	var err error
	if b.file != nil {
		n, err = b.file.Write(p)
	} else {
		n, err = b.mem.Write(p)
	}
	b.size += int64(n)
	return n, err
}

// spill moves the in-memory contents to a new temporary file.
func (b *SpillBuffer) spill() error {
	f, err := os.CreateTemp(b.dir, "easyproc-spill-*")
	if err != nil {
		return fmt.Errorf("failed to create spill file: %w", err)
	}
	if _, err := f.Write(b.mem.Bytes()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("failed to write spill file: %w", err)
	}
	b.mem.Reset()
	b.file = f
	return nil
}

// Len returns the number of bytes written so far.
func (b *SpillBuffer) Len() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Spilled reports whether the contents moved to disk.
func (b *SpillBuffer) Spilled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file != nil
}

// Bytes returns a copy of everything written so far.
func (b *SpillBuffer) Bytes() ([]byte, error) {
	var out bytes.Buffer
	if _, err := b.WriteTo(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// WriteTo copies everything written so far to w without consuming it.
func (b *SpillBuffer) WriteTo(w io.Writer) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.file == nil {
		n, err := w.Write(b.mem.Bytes())
		return int64(n), err
	}

	return io.Copy(w, io.NewSectionReader(b.file, 0, b.size))
}

// Close releases the spill file. Further writes fail.
func (b *SpillBuffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.mem.Reset()

	if b.file == nil {
		return nil
	}
	name := b.file.Name()
	err := b.file.Close()
	b.file = nil
	if rmErr := os.Remove(name); err == nil {
		err = rmErr
	}
	return err
}
