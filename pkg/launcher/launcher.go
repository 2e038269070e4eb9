// Package launcher starts external processes with symbolic stdio
// redirection and an optional sanitized environment.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rzbill/easyproc/pkg/command"
	"github.com/rzbill/easyproc/pkg/descriptor"
	"github.com/rzbill/easyproc/pkg/host"
	"github.com/rzbill/easyproc/pkg/log"
)

// ErrLaunch is wrapped by every error returned from Open.
var ErrLaunch = errors.New("process launch failed")

// DefaultWaitDelay bounds how long Wait keeps copying output after the
// process exits when descendants hold the output open.
const DefaultWaitDelay = 5 * time.Second

// Options are passed through to the spawn primitive.
type Options struct {
	SysProcAttr *syscall.SysProcAttr
	WaitDelay   time.Duration
}

// CommandSpec describes one process to launch.
type CommandSpec struct {
	Command command.Command

	// Dir is the working directory; empty means the current one.
	Dir string

	// Env is the complete child environment. A nil map inherits the
	// caller's environment.
	Env map[string]string

	Options Options
}

// Launcher launches processes against the facts of one Host.
type Launcher struct {
	host      *host.Host
	resolver  descriptor.Resolver
	builder   *command.Builder
	logger    log.Logger
	waitDelay time.Duration
	spillDir  string
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(l *Launcher) {
		l.logger = logger
	}
}

// WithBuilder replaces the command builder.
func WithBuilder(b *command.Builder) Option {
	return func(l *Launcher) {
		l.builder = b
	}
}

// WithWaitDelay sets the default exec WaitDelay.
func WithWaitDelay(d time.Duration) Option {
	return func(l *Launcher) {
		l.waitDelay = d
	}
}

// WithSpillDir sets where Temporary buffers spill to disk.
func WithSpillDir(dir string) Option {
	return func(l *Launcher) {
		l.spillDir = dir
	}
}

// New creates a Launcher for h.
func New(h *host.Host, opts ...Option) *Launcher {
	l := &Launcher{
		host:      h,
		resolver:  descriptor.NewResolver(h),
		builder:   command.NewBuilder(),
		logger:    log.GetDefaultLogger(),
		waitDelay: DefaultWaitDelay,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.WithComponent("launcher")
	return l
}

// NewCleanSpec returns a spec running cmd in dir with the sanitized host
// environment.
func (l *Launcher) NewCleanSpec(cmd command.Command, dir string) CommandSpec {
	return CommandSpec{
		Command: cmd,
		Dir:     dir,
		Env:     l.host.CleanEnv(),
	}
}

// Open starts the process described by spec. stdout and stderr say where
// the output slots go; wantStdin requests a writable input pipe, otherwise
// the input is bound to the null device. Pipes requested by the caller
// are never drained here: an undrained pipe stalls the child once the OS
// buffer fills.
func (l *Launcher) Open(ctx context.Context, spec CommandSpec, stdout, stderr descriptor.Directive, wantStdin bool) (*Handle, error) {
	runnable, err := l.builder.Build(spec.Command)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLaunch, err)
	}

	dir := spec.Dir
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("%w: failed to resolve working directory: %w", ErrLaunch, err)
		}
	}

	cmd := exec.CommandContext(ctx, runnable.Path)
	cmd.Args = runnable.Args
	cmd.Dir = dir
	if spec.Env != nil {
		cmd.Env = host.EnvironFromMap(host.EnsurePath(spec.Env, l.host.Ambient()))
	}
	cmd.SysProcAttr = spec.Options.SysProcAttr
	if runnable.CmdLine != "" {
		setCmdLine(cmd, runnable.CmdLine)
	}
	cmd.WaitDelay = l.waitDelay
	if spec.Options.WaitDelay > 0 {
		cmd.WaitDelay = spec.Options.WaitDelay
	}

	h := &Handle{
		id:     uuid.NewString(),
		cmd:    cmd,
		done:   make(chan struct{}),
		logger: l.logger,
	}
	h.logger = l.logger.With(log.LaunchID(h.id))

	w := &wiring{resolver: l.resolver, spillDir: l.spillDir, logger: h.logger}
	if err := w.input(cmd, h, wantStdin); err != nil {
		w.abort()
		return nil, fmt.Errorf("%w: %w", ErrLaunch, err)
	}
	if err := w.output(cmd, h, descriptor.Stdout, stdout); err != nil {
		w.abort()
		return nil, fmt.Errorf("%w: %w", ErrLaunch, err)
	}
	if err := w.output(cmd, h, descriptor.Stderr, stderr); err != nil {
		w.abort()
		return nil, fmt.Errorf("%w: %w", ErrLaunch, err)
	}

	if err := cmd.Start(); err != nil {
		w.abort()
		h.logger.Debug("launch failed",
			log.Str("path", runnable.Path),
			log.Str("dir", dir),
			log.Err(err))
		return nil, fmt.Errorf("%w: %w", ErrLaunch, err)
	}

	// The child owns its ends now.
	w.started()

	h.logger.Debug("process started",
		log.Str("path", runnable.Path),
		log.Bool("shell", runnable.Shell),
		log.Int("pid", cmd.Process.Pid),
		log.Str("stdout", stdout.String()),
		log.Str("stderr", stderr.String()),
		log.Bool("stdin", wantStdin))

	go h.wait()
	return h, nil
}

// Run launches spec with captured output and returns what it printed on
// stdout. The process is terminated when it outlives timeout; the
// output gathered until then is still returned.
func (l *Launcher) Run(ctx context.Context, spec CommandSpec, timeout time.Duration) ([]byte, error) {
	h, err := l.Open(ctx, spec, descriptor.Temp(), descriptor.Null(), false)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	if h.Await(timeout) {
		h.logger.Debug("process timed out", log.Duration("timeout", timeout))
		if err := h.Terminate(); err != nil {
			h.logger.Warn("failed to terminate process", log.Err(err))
		}
		h.Wait()
	}

	return h.ReadOutput()
}

// Check runs spec with discarded output and reports whether it exited
// with status 0 within timeout.
func (l *Launcher) Check(ctx context.Context, spec CommandSpec, timeout time.Duration) bool {
	h, err := l.Open(ctx, spec, descriptor.Null(), descriptor.Null(), false)
	if err != nil {
		return false
	}
	defer h.Close()

	if h.Await(timeout) {
		h.Terminate()
		return false
	}
	return h.Wait() == nil
}
