package launcher

import (
	"bytes"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/rzbill/easyproc/pkg/descriptor"
	"github.com/rzbill/easyproc/pkg/log"
)

// ErrNoStream is returned when reading a slot the handle does not expose.
var ErrNoStream = errors.New("stream not available")

// terminateGrace is how long Terminate waits after SIGTERM before killing.
const terminateGrace = 2 * time.Second

// Handle is a running or finished child process.
type Handle struct {
	id     string
	cmd    *exec.Cmd
	logger log.Logger

	mu        sync.Mutex
	stdin     *os.File
	stdout    *os.File
	stderr    *os.File
	stdoutBuf *descriptor.SpillBuffer
	stderrBuf *descriptor.SpillBuffer

	// released holds detached buffers until Close.
	released []*descriptor.SpillBuffer

	done    chan struct{}
	waitErr error
}

func (h *Handle) wait() {
	h.waitErr = h.cmd.Wait()
	close(h.done)

	code := -1
	if h.cmd.ProcessState != nil {
		code = h.cmd.ProcessState.ExitCode()
	}
	h.logger.Debug("process exited", log.Int("exit_code", code))
}

// ID returns the unique launch ID.
func (h *Handle) ID() string {
	return h.id
}

// Pid returns the OS process ID.
func (h *Handle) Pid() int {
	return h.cmd.Process.Pid
}

// Await waits up to timeout for the process to exit and reports whether
// it is still running. A non-positive timeout waits until exit.
func (h *Handle) Await(timeout time.Duration) bool {
	if timeout <= 0 {
		<-h.done
		return false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-h.done:
		return false
	case <-timer.C:
		return true
	}
}

// Wait blocks until the process exits and returns its exit error.
func (h *Handle) Wait() error {
	<-h.done
	return h.waitErr
}

// Exited reports whether the process has exited.
func (h *Handle) Exited() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// ExitCode returns the exit code once the process exited.
func (h *Handle) ExitCode() (int, bool) {
	if !h.Exited() || h.cmd.ProcessState == nil {
		return 0, false
	}
	return h.cmd.ProcessState.ExitCode(), true
}

// Terminate asks the process to stop and kills it if it does not exit
// within a short grace period.
func (h *Handle) Terminate() error {
	if h.Exited() {
		return nil
	}

	if err := h.cmd.Process.Signal(syscall.SIGTERM); err == nil {
		timer := time.NewTimer(terminateGrace)
		defer timer.Stop()
		select {
		case <-h.done:
			return nil
		case <-timer.C:
			h.logger.Debug("process ignored SIGTERM, killing")
		}
	}

	if err := h.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

// Stdin returns the input pipe, or nil when none was requested.
func (h *Handle) Stdin() io.Writer {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stdin == nil {
		return nil
	}
	return h.stdin
}

// CloseInput closes the input pipe so the child sees end of file.
func (h *Handle) CloseInput() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stdin == nil {
		return nil
	}
	err := h.stdin.Close()
	h.stdin = nil
	return err
}

// Stdout returns the output stream: the pipe itself, or a snapshot of a
// captured buffer. Nil when the slot is not exposed.
func (h *Handle) Stdout() io.Reader {
	h.mu.Lock()
	defer h.mu.Unlock()
	return stream(h.stdout, h.stdoutBuf)
}

// Stderr is Stdout for the error slot.
func (h *Handle) Stderr() io.Reader {
	h.mu.Lock()
	defer h.mu.Unlock()
	return stream(h.stderr, h.stderrBuf)
}

func stream(pipe *os.File, buf *descriptor.SpillBuffer) io.Reader {
	switch {
	case pipe != nil:
		return pipe
	case buf != nil:
		data, err := buf.Bytes()
		if err != nil {
			return nil
		}
		return bytes.NewReader(data)
	default:
		return nil
	}
}

// ReadOutput reads the output slot. A pipe is read until end of file; a
// captured buffer returns everything written so far.
func (h *Handle) ReadOutput() ([]byte, error) {
	h.mu.Lock()
	pipe, buf := h.stdout, h.stdoutBuf
	h.mu.Unlock()
	return readAll(pipe, buf)
}

// ReadError is ReadOutput for the error slot.
func (h *Handle) ReadError() ([]byte, error) {
	h.mu.Lock()
	pipe, buf := h.stderr, h.stderrBuf
	h.mu.Unlock()
	return readAll(pipe, buf)
}

func readAll(pipe *os.File, buf *descriptor.SpillBuffer) ([]byte, error) {
	switch {
	case pipe != nil:
		return io.ReadAll(pipe)
	case buf != nil:
		return buf.Bytes()
	default:
		return nil, ErrNoStream
	}
}

// CopyOutputTo copies the output slot to w.
func (h *Handle) CopyOutputTo(w io.Writer) (int64, error) {
	h.mu.Lock()
	pipe, buf := h.stdout, h.stdoutBuf
	h.mu.Unlock()

	switch {
	case pipe != nil:
		return io.Copy(w, pipe)
	case buf != nil:
		return buf.WriteTo(w)
	default:
		return 0, ErrNoStream
	}
}

// DetachOutput stops exposing the output slot. A pipe is closed.
func (h *Handle) DetachOutput() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detach(&h.stdout, &h.stdoutBuf)
}

// DetachError stops exposing the error slot. A pipe is closed.
func (h *Handle) DetachError() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detach(&h.stderr, &h.stderrBuf)
}

func (h *Handle) detach(pipe **os.File, buf **descriptor.SpillBuffer) {
	if *pipe != nil {
		(*pipe).Close()
		*pipe = nil
	}
	if *buf != nil {
		h.released = append(h.released, *buf)
		*buf = nil
	}
}

// Close releases every stream of the handle. It does not stop the
// process; buffers are released once it exited.
func (h *Handle) Close() error {
	h.mu.Lock()
	var errs []error
	if h.stdin != nil {
		errs = append(errs, h.stdin.Close())
		h.stdin = nil
	}
	h.detach(&h.stdout, &h.stdoutBuf)
	h.detach(&h.stderr, &h.stderrBuf)
	released := h.released
	h.released = nil
	h.mu.Unlock()

	if len(released) > 0 {
		release := func() {
			for _, b := range released {
				b.Close()
			}
		}
		if h.Exited() {
			release()
		} else {
			go func() {
				<-h.done
				release()
			}()
		}
	}

	return errors.Join(errs...)
}
