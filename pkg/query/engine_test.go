package query

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rzbill/easyproc/pkg/command"
	"github.com/rzbill/easyproc/pkg/host"
	"github.com/rzbill/easyproc/pkg/launcher"
	"github.com/rzbill/easyproc/pkg/log"
	"github.com/rzbill/easyproc/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExec serves canned tool output keyed by argv[0].
type fakeExec struct {
	mu      sync.Mutex
	outputs map[string]string
	errs    map[string]error
	checks  map[string]bool
	runs    [][]string
}

func (f *fakeExec) NewCleanSpec(cmd command.Command, dir string) launcher.CommandSpec {
	return launcher.CommandSpec{Command: cmd, Dir: dir, Env: map[string]string{}}
}

func (f *fakeExec) Run(_ context.Context, spec launcher.CommandSpec, _ time.Duration) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	args := spec.Command.Args()
	f.runs = append(f.runs, args)
	if err := f.errs[args[0]]; err != nil {
		return nil, err
	}
	return []byte(f.outputs[args[0]]), nil
}

func (f *fakeExec) Check(ctx context.Context, spec launcher.CommandSpec, _ time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	return f.checks[spec.Command.Args()[0]]
}

type fakeLister struct {
	name      string
	available bool
	records   []types.ProcessRecord
	err       error
	calls     int
}

func (l *fakeLister) Name() string                   { return l.name }
func (l *fakeLister) Available(context.Context) bool { return l.available }
func (l *fakeLister) List(_ context.Context, f *types.FilterSpec) ([]types.ProcessRecord, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return Filter(f, l.records), nil
}

func newTestEngine(osName string, exec Executor, opts ...EngineOption) (*Engine, *log.TestLogger) {
	logger := log.NewTestLogger()
	h := host.New(host.Config{}, host.WithOSName(osName))
	opts = append([]EngineOption{WithLogger(logger)}, opts...)
	return NewEngine(h, exec, opts...), logger
}

func TestEngine_FallsBackOnUnavailable(t *testing.T) {
	ps := &fakeLister{name: "powershell"}
	wmic := &fakeLister{name: "wmic", available: true, records: []types.ProcessRecord{{ProcessID: 7, Name: "a.exe"}}}
	e, _ := newTestEngine("windows", &fakeExec{}, WithListers(types.FamilyWindows, ps, wmic))

	records := e.List(context.Background(), nil)
	assert.Equal(t, []types.ProcessRecord{{ProcessID: 7, Name: "a.exe"}}, records)
	assert.Equal(t, 0, ps.calls)
	assert.Equal(t, 1, wmic.calls)
}

func TestEngine_FallsBackOnError(t *testing.T) {
	ps := &fakeLister{name: "powershell", available: true, err: ErrNoHeader}
	wmic := &fakeLister{name: "wmic", available: true}
	e, logger := newTestEngine("windows", &fakeExec{}, WithListers(types.FamilyWindows, ps, wmic))

	records, err := e.Query(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
	assert.Equal(t, 1, ps.calls)
	assert.True(t, logger.AssertLoggedWithField(log.DebugLevel, "lister failed", "lister", "powershell"))
}

func TestEngine_AllListersFailDegradesToEmpty(t *testing.T) {
	boom := errors.New("boom")
	e, logger := newTestEngine("windows", &fakeExec{}, WithListers(types.FamilyWindows,
		&fakeLister{name: "powershell", available: true, err: boom},
		&fakeLister{name: "wmic"},
	))

	_, err := e.Query(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, ErrUnsupported)

	assert.Empty(t, e.List(context.Background(), nil))
	assert.True(t, logger.AssertLogged(log.WarnLevel, "process listing failed"))
}

func TestEngine_UnsupportedFamily(t *testing.T) {
	e, _ := newTestEngine("plan9", &fakeExec{})

	_, err := e.Query(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Empty(t, e.List(context.Background(), nil))

	_, ok := e.Command(context.Background(), 1)
	assert.False(t, ok)
}

func TestEngine_WindowsCommand(t *testing.T) {
	wmic := &fakeLister{name: "wmic", available: true, records: []types.ProcessRecord{
		{ProcessID: 1, CommandLine: "init"},
		{ProcessID: 42, CommandLine: `C:\app.exe --x`},
	}}
	e, _ := newTestEngine("windows", &fakeExec{}, WithListers(types.FamilyWindows, wmic))

	cmd, ok := e.Command(context.Background(), 42)
	assert.True(t, ok)
	assert.Equal(t, `C:\app.exe --x`, cmd)

	_, ok = e.Command(context.Background(), 999999)
	assert.False(t, ok)
}

func TestEngine_WMICThroughExecutor(t *testing.T) {
	fx := &fakeExec{
		checks: map[string]bool{"powershell": false, "wmic": true},
		outputs: map[string]string{"wmic": "\r\nNode,CommandLine,ExecutablePath,Name,ParentProcessId,ProcessId\r\n" +
			"PC,C:\\x.exe a,b,C:\\x.exe,x.exe,4,88\r\n" +
			"PC,garbage,row\r\n"},
	}
	e, _ := newTestEngine("Windows_NT", fx)

	f := types.NewFilter().WithContains(types.FieldName, "x")
	records := e.List(context.Background(), f)
	require.Len(t, records, 1)
	assert.Equal(t, types.ProcessRecord{
		ProcessID:       88,
		ParentProcessID: 4,
		CommandLine:     `C:\x.exe a,b`,
		Name:            "x.exe",
		ExecutablePath:  `C:\x.exe`,
	}, records[0])

	require.NotEmpty(t, fx.runs)
	assert.Equal(t, []string{"wmic", "process", "where", "(Name like '%x%')",
		"get", "CommandLine,Name,ExecutablePath,ParentProcessId,ProcessId", "/format:csv"}, fx.runs[len(fx.runs)-1])
}

func TestEngine_PowerShellThroughExecutor(t *testing.T) {
	fx := &fakeExec{
		checks: map[string]bool{"powershell": true},
		outputs: map[string]string{"powershell": `"ProcessId","ParentProcessId","CommandLine","Name","ExecutablePath"` + "\r\n" +
			`"5","1","svc.exe -k a,b","svc.exe","C:\svc.exe"` + "\r\n"},
	}
	e, _ := newTestEngine("windows", fx)

	records := e.List(context.Background(), types.NewFilter().WithEq(types.FieldProcessID, 5))
	require.Len(t, records, 1)
	assert.Equal(t, "svc.exe -k a,b", records[0].CommandLine)

	args := fx.runs[0]
	assert.Equal(t, "powershell", args[0])
	assert.Equal(t, "Get-CimInstance Win32_Process | Where-Object {$_.ProcessId -in @('5')} "+
		"| Select-Object ProcessId,ParentProcessId,CommandLine,Name,ExecutablePath | ConvertTo-Csv -NoTypeInformation",
		args[len(args)-1])
}

func TestEngine_PowerShellWithoutHeaderFallsBack(t *testing.T) {
	fx := &fakeExec{
		checks: map[string]bool{"powershell": true, "wmic": true},
		outputs: map[string]string{
			"powershell": "Get-CimInstance : Access denied\r\n",
			"wmic":       "Node,CommandLine,ExecutablePath,Name,ParentProcessId,ProcessId\r\nPC,a.exe,C:\\a.exe,a.exe,0,9\r\n",
		},
	}
	e, _ := newTestEngine("windows", fx)

	records := e.List(context.Background(), nil)
	require.Len(t, records, 1)
	assert.Equal(t, int64(9), records[0].ProcessID)
}

func TestEngine_UnixCommand(t *testing.T) {
	fx := &fakeExec{
		checks:  map[string]bool{"ps": true},
		outputs: map[string]string{"ps": "  PID COMMAND\n 4242 /usr/bin/foo --bar\n"},
	}
	e, _ := newTestEngine("linux", fx)

	cmd, ok := e.Command(context.Background(), 4242)
	assert.True(t, ok)
	assert.Equal(t, "/usr/bin/foo --bar", cmd)
	assert.Equal(t, []string{"ps", "-p", "4242", "-o", "pid,command"}, fx.runs[0])
}

func TestEngine_PsLister(t *testing.T) {
	fx := &fakeExec{
		checks: map[string]bool{"ps": true},
		outputs: map[string]string{"ps": "    PID    PPID COMMAND\n" +
			"      1       0 /sbin/init splash\n" +
			"      2       0 [kthreadd]\n" +
			"    300       1 sleep 1000\n" +
			"    301       1 '/opt/my app/bin/run' --flag\n"},
	}
	e, _ := newTestEngine("darwin", fx)

	records := e.List(context.Background(), nil)
	require.Len(t, records, 4)
	assert.Equal(t, types.ProcessRecord{
		ProcessID: 1, ParentProcessID: 0, CommandLine: "/sbin/init splash", Name: "init", ExecutablePath: "/sbin/init",
	}, records[0])
	assert.Equal(t, "kthreadd", records[1].Name)
	assert.Equal(t, "", records[2].ExecutablePath)
	assert.Equal(t, "sleep", records[2].Name)
	assert.Equal(t, "/opt/my app/bin/run", records[3].ExecutablePath)

	filtered := e.List(context.Background(), types.NewFilter().WithEq(types.FieldParentProcessID, 1).WithNoContains(types.FieldName, "sleep"))
	require.Len(t, filtered, 1)
	assert.Equal(t, int64(301), filtered[0].ProcessID)
}

func TestExtractCommand(t *testing.T) {
	testCases := []struct {
		name string
		out  string
		pid  int64
		want string
		ok   bool
	}{
		{"left aligned", "PID COMMAND\n77 /bin/sh -c x", 77, "/bin/sh -c x", true},
		{"right aligned", "  PID COMMAND\n   77 top\n", 77, "top", true},
		{"multi line command", "PID COMMAND\n77 sh -c 'a\nb'\n", 77, "sh -c 'a\nb'", true},
		{"header only", "  PID COMMAND\n", 77, "", false},
		{"other pid", "PID COMMAND\n78 top", 77, "", false},
		{"empty", "", 77, "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractCommand(tc.out, tc.pid)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func newHostEngine(t *testing.T) *Engine {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses ps")
	}
	if _, err := exec.LookPath("ps"); err != nil {
		t.Skip("ps not available")
	}
	h := host.New(host.Config{})
	l := launcher.New(h, launcher.WithLogger(log.NewTestLogger()))
	return NewEngine(h, l, WithLogger(log.NewTestLogger()), WithTimeout(10*time.Second))
}

func TestEngine_HostMissingProcess(t *testing.T) {
	e := newHostEngine(t)

	records := e.List(context.Background(), types.NewFilter().WithEq(types.FieldProcessID, 999999))
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestEngine_HostFindsSelf(t *testing.T) {
	e := newHostEngine(t)
	ctx := context.Background()

	self := types.NewFilter().WithEq(types.FieldProcessID, os.Getpid())
	records, err := e.Query(ctx, self)
	if err != nil {
		t.Skipf("ps does not support the listing flags: %v", err)
	}
	require.Len(t, records, 1)
	assert.Equal(t, int64(os.Getppid()), records[0].ParentProcessID)

	cmd, ok := e.Command(ctx, int64(os.Getpid()))
	require.True(t, ok)
	assert.True(t, strings.Contains(cmd, records[0].Name) || strings.Contains(records[0].CommandLine, cmd))
}

func TestTools_ProbeIgnoresCallerCancellation(t *testing.T) {
	fx := &fakeExec{checks: map[string]bool{"powershell": true}}
	tl := tools{
		host:    host.New(host.Config{}, host.WithOSName("windows")),
		exec:    fx,
		timeout: time.Second,
		logger:  log.NewTestLogger(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.True(t, tl.probe(ctx, "powershell", "powershell", "/?"))
	assert.True(t, tl.probe(context.Background(), "powershell", "powershell", "/?"))
}
