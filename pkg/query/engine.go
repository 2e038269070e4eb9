package query

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rzbill/easyproc/pkg/command"
	"github.com/rzbill/easyproc/pkg/host"
	"github.com/rzbill/easyproc/pkg/launcher"
	"github.com/rzbill/easyproc/pkg/log"
	"github.com/rzbill/easyproc/pkg/types"
)

// ErrUnsupported is returned when no lister serves the host.
var ErrUnsupported = errors.New("process listing not supported on this host")

// DefaultTimeout bounds every tool invocation.
const DefaultTimeout = 30 * time.Second

// Executor runs query tools. *launcher.Launcher implements it.
type Executor interface {
	NewCleanSpec(cmd command.Command, dir string) launcher.CommandSpec
	Run(ctx context.Context, spec launcher.CommandSpec, timeout time.Duration) ([]byte, error)
	Check(ctx context.Context, spec launcher.CommandSpec, timeout time.Duration) bool
}

// Lister produces process records from one platform tool.
type Lister interface {
	Name() string
	Available(ctx context.Context) bool
	List(ctx context.Context, filter *types.FilterSpec) ([]types.ProcessRecord, error)
}

// Engine dispatches queries to the listers of the host OS family, trying
// them in order.
type Engine struct {
	host    *host.Host
	exec    Executor
	timeout time.Duration
	logger  log.Logger
	listers map[types.Family][]Lister
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger log.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTimeout bounds each tool run.
func WithTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithListers replaces the listers used for a family.
func WithListers(family types.Family, listers ...Lister) EngineOption {
	return func(e *Engine) {
		e.listers[family] = listers
	}
}

// NewEngine creates an engine for h running tools through exec.
func NewEngine(h *host.Host, exec Executor, opts ...EngineOption) *Engine {
	e := &Engine{
		host:    h,
		exec:    exec,
		timeout: DefaultTimeout,
		logger:  log.GetDefaultLogger(),
		listers: make(map[types.Family][]Lister),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithComponent("query")

	t := tools{host: h, exec: exec, timeout: e.timeout, logger: e.logger}
	if _, ok := e.listers[types.FamilyWindows]; !ok {
		e.listers[types.FamilyWindows] = []Lister{&PowerShellLister{t}, &WMICLister{t}}
	}
	ps := &PsLister{t}
	for _, f := range []types.Family{types.FamilyLinux, types.FamilyBSD, types.FamilyMac} {
		if _, ok := e.listers[f]; !ok {
			e.listers[f] = []Lister{ps}
		}
	}
	return e
}

// Query lists the processes matching filter with the first available
// lister that succeeds.
func (e *Engine) Query(ctx context.Context, filter *types.FilterSpec) ([]types.ProcessRecord, error) {
	family := e.host.Family()
	listers := e.listers[family]
	if len(listers) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, family)
	}

	var errs []error
	for _, l := range listers {
		if !l.Available(ctx) {
			e.logger.Debug("lister unavailable", log.Str("lister", l.Name()))
			errs = append(errs, fmt.Errorf("%s: %w", l.Name(), ErrUnsupported))
			continue
		}

		records, err := l.List(ctx, filter)
		if err != nil {
			e.logger.Debug("lister failed, trying next", log.Str("lister", l.Name()), log.Err(err))
			errs = append(errs, fmt.Errorf("%s: %w", l.Name(), err))
			continue
		}

		e.logger.Debug("processes listed", log.Str("lister", l.Name()), log.Int("count", len(records)))
		if records == nil {
			records = []types.ProcessRecord{}
		}
		return records, nil
	}
	return nil, errors.Join(errs...)
}

// List is Query that degrades every failure to an empty result.
func (e *Engine) List(ctx context.Context, filter *types.FilterSpec) []types.ProcessRecord {
	records, err := e.Query(ctx, filter)
	if err != nil {
		e.logger.Warn("process listing failed", log.Err(err))
		return []types.ProcessRecord{}
	}
	return records
}

// Command returns the command line of process pid.
func (e *Engine) Command(ctx context.Context, pid int64) (string, bool) {
	family := e.host.Family()
	switch {
	case family == types.FamilyWindows:
		records := e.List(ctx, types.NewFilter().WithEq(types.FieldProcessID, pid))
		if len(records) == 0 {
			return "", false
		}
		return records[0].CommandLine, true
	case family.IsUnix():
		return e.unixCommand(ctx, pid)
	default:
		return "", false
	}
}

func (e *Engine) unixCommand(ctx context.Context, pid int64) (string, bool) {
	id := strconv.FormatInt(pid, 10)
	spec := e.exec.NewCleanSpec(command.Argv("ps", "-p", id, "-o", "pid,command"), "")
	out, err := e.exec.Run(ctx, spec, e.timeout)
	if err != nil {
		e.logger.Warn("ps failed", log.Int64("pid", pid), log.Err(err))
		return "", false
	}
	return ExtractCommand(string(out), pid)
}

// ExtractCommand pulls the command of pid out of `ps -p PID -o
// pid,command` output: everything after the PID that starts a line, up
// to the end of the output.
func ExtractCommand(out string, pid int64) (string, bool) {
	re := regexp.MustCompile(`(?s)\n[ \t]*` + strconv.FormatInt(pid, 10) + `\s+(.+)$`)
	m := re.FindStringSubmatch(strings.TrimSpace(out))
	if m == nil {
		return "", false
	}
	cmd := strings.TrimSpace(m[1])
	return cmd, cmd != ""
}
