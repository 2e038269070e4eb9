package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/rzbill/easyproc/internal/config"
	"github.com/rzbill/easyproc/pkg/cli/format"
	"github.com/rzbill/easyproc/pkg/host"
	"github.com/rzbill/easyproc/pkg/launcher"
	"github.com/rzbill/easyproc/pkg/log"
	"github.com/rzbill/easyproc/pkg/query"
	"github.com/rzbill/easyproc/pkg/types"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLister struct {
	records []types.ProcessRecord
}

func (l *staticLister) Name() string                   { return "static" }
func (l *staticLister) Available(context.Context) bool { return true }
func (l *staticLister) List(_ context.Context, f *types.FilterSpec) ([]types.ProcessRecord, error) {
	return query.Filter(f, l.records), nil
}

var sampleRecords = []types.ProcessRecord{
	{ProcessID: 1, ParentProcessID: 0, CommandLine: "/sbin/init", Name: "init", ExecutablePath: "/sbin/init"},
	{ProcessID: 200, ParentProcessID: 1, CommandLine: "/usr/bin/node server.js", Name: "node", ExecutablePath: "/usr/bin/node"},
	{ProcessID: 201, ParentProcessID: 1, CommandLine: "bash", Name: "bash"},
}

func newTestApp(t *testing.T) *app {
	t.Helper()
	format.EnableColor(false)

	logger := log.NewTestLogger()
	h := host.New(host.Config{}, host.WithOSName("linux"), host.WithEnviron(func() []string {
		return []string{"PATH=" + os.Getenv("PATH"), "HOME=/home/someone", "XDG_RUNTIME_DIR=/run/user/1", "KEEP=1"}
	}))
	l := launcher.New(h, launcher.WithLogger(logger))
	e := query.NewEngine(h, l,
		query.WithLogger(logger),
		query.WithListers(types.FamilyLinux, &staticLister{records: sampleRecords}))

	return &app{cfg: config.Default(), logger: logger, host: h, launcher: l, engine: e}
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestFilterFlags(t *testing.T) {
	f := filterFlags{
		eq:         []string{"name=node", "Name=bash"},
		noContains: []string{"CommandLine=server=1"},
	}

	spec, err := f.spec()
	require.NoError(t, err)
	assert.Equal(t, []string{"node", "bash"}, spec.Eq[types.FieldName])
	assert.Equal(t, []string{"server=1"}, spec.NoContains[types.FieldCommandLine])

	_, err = (&filterFlags{eq: []string{"Name"}}).spec()
	assert.True(t, types.IsValidationError(err))

	_, err = (&filterFlags{diff: []string{"Color=red"}}).spec()
	assert.Error(t, err)
}

func TestProcessTable_Rows(t *testing.T) {
	table := &ProcessTable{Wide: true}
	rows := table.Rows(sampleRecords[:2])

	assert.Equal(t, []string{"PID", "PPID", "NAME", "EXECUTABLE", "COMMAND"}, rows[0])
	assert.Equal(t, []string{"200", "1", "node", "/usr/bin/node", "/usr/bin/node server.js"}, rows[2])
}

func TestProcessTable_Truncates(t *testing.T) {
	table := &ProcessTable{MaxWidth: 40}
	rec := types.ProcessRecord{ProcessID: 9, Name: "x", CommandLine: strings.Repeat("a", 200)}

	rows := table.Rows([]types.ProcessRecord{rec})
	cmd := rows[1][3]
	assert.True(t, strings.HasSuffix(cmd, "..."))
	assert.Less(t, len(cmd), 40)
}

func TestPsCmd(t *testing.T) {
	a := newTestApp(t)

	out, _, err := execute(t, newPsCmd(a), "--eq", "ParentProcessId=1", "--no-contains", "name=BASH", "-o", "json")
	require.NoError(t, err)

	var records []types.ProcessRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, int64(200), records[0].ProcessID)

	out, _, err = execute(t, newPsCmd(a), "--no-headers")
	require.NoError(t, err)
	assert.Contains(t, out, "node server.js")
	assert.NotContains(t, out, "PPID")

	out, _, err = execute(t, newPsCmd(a), "--eq", "ProcessId=999999")
	require.NoError(t, err)
	assert.Contains(t, out, "No processes found")

	_, _, err = execute(t, newPsCmd(a), "--eq", "Bogus=1")
	assert.Error(t, err)
}

func TestCmdlineCmd_InvalidPid(t *testing.T) {
	a := newTestApp(t)

	_, _, err := execute(t, newCmdlineCmd(a), "abc")
	assert.True(t, types.IsValidationError(err))
}

func TestRunCmd(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX tools")
	}
	a := newTestApp(t)

	out, _, err := execute(t, newRunCmd(a), "--stdout", "temp", "--stderr", "null", "--", "echo", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)

	out, _, err = execute(t, newRunCmd(a), "--stdout", "pipe", "--shell", "--", "echo", "piped")
	require.NoError(t, err)
	assert.Equal(t, "piped\n", out)

	target := filepath.Join(t.TempDir(), "out.txt")
	_, _, err = execute(t, newRunCmd(a), "--stdout", target, "--", "echo", "to file")
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "to file\n", string(data))
}

func TestRunCmd_StdinForwarded(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX tools")
	}
	a := newTestApp(t)

	cmd := newRunCmd(a)
	cmd.SetIn(strings.NewReader("from stdin\n"))
	out, _, err := execute(t, cmd, "--stdin", "--stdout", "temp", "--", "cat")
	require.NoError(t, err)
	assert.Equal(t, "from stdin\n", out)

	// The command exits without reading while input is still being copied.
	for i := 0; i < 20; i++ {
		cmd = newRunCmd(a)
		cmd.SetIn(strings.NewReader(strings.Repeat("x", 1<<20)))
		_, _, err = execute(t, cmd, "--stdin", "--stdout", "null", "--", "true")
		require.NoError(t, err)
	}
}

func TestRunCmd_CleanEnv(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses env(1)")
	}
	a := newTestApp(t)

	out, _, err := execute(t, newRunCmd(a), "--stdout", "temp", "--clean-env", "--", "env")
	require.NoError(t, err)
	assert.Contains(t, out, "KEEP=1")
	assert.NotContains(t, out, "XDG_RUNTIME_DIR")
}

func TestRunCmd_ExitCodeAndLaunchFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX shell")
	}
	a := newTestApp(t)

	_, _, err := execute(t, newRunCmd(a), "--shell", "--stdout", "null", "--", "exit 4")
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 4, exitErr.Code)

	_, _, err = execute(t, newRunCmd(a), "--", "easyproc-no-such-binary-7f3a")
	assert.ErrorIs(t, err, launcher.ErrLaunch)
	var hinted *format.Hinted
	assert.True(t, errors.As(err, &hinted))
}

func TestEnvCmd(t *testing.T) {
	a := newTestApp(t)

	out, _, err := execute(t, newEnvCmd(a))
	require.NoError(t, err)
	assert.Contains(t, out, "KEEP=1\n")
	assert.NotContains(t, out, "HOME=")

	out, _, err = execute(t, newEnvCmd(a), "--removed", "-o", "json")
	require.NoError(t, err)
	var removed map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &removed))
	assert.Equal(t, map[string]string{"HOME": "/home/someone", "XDG_RUNTIME_DIR": "/run/user/1"}, removed)
}

func TestWatchCmd(t *testing.T) {
	a := newTestApp(t)

	out, _, err := execute(t, newWatchCmd(a), "--schedule", "@every 1s", "--count", "1", "--contains", "Name=nod", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "1 processes")
	assert.Contains(t, out, "CommandLine: /usr/bin/node server.js")

	_, _, err = execute(t, newWatchCmd(a), "--schedule", "every now and then")
	assert.ErrorContains(t, err, "invalid schedule")
}

func TestVersionCmd(t *testing.T) {
	out, _, err := execute(t, newVersionCmd(), "-o", "json")
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, runtime.GOOS, info["os"])
}

func TestRootCmd_Wiring(t *testing.T) {
	root := newRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"ps", "cmdline", "run", "env", "watch", "version"} {
		assert.True(t, names[want], want)
	}
}
