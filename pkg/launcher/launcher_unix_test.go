//go:build !windows

package launcher

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"syscall"
	"testing"

	"github.com/rzbill/easyproc/pkg/command"
	"github.com/rzbill/easyproc/pkg/descriptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_RawDescriptorStaysOwnedByCaller(t *testing.T) {
	l := newTestLauncher(t)

	path := filepath.Join(t.TempDir(), "raw.txt")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	fd := f.Fd()

	h, err := l.Open(context.Background(), CommandSpec{Command: command.Argv("echo", "x")},
		descriptor.Raw(fd, "raw"), descriptor.Null(), false)
	require.NoError(t, err)
	require.NoError(t, h.Wait())
	require.NoError(t, h.Close())
	h = nil

	for i := 0; i < 5; i++ {
		runtime.GC()
	}

	var st syscall.Stat_t
	require.NoError(t, syscall.Fstat(int(fd), &st), "caller descriptor must stay open")

	_, err = f.WriteString("y\n")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x\ny\n", string(data))
}

func TestOpen_InvalidRawDescriptor(t *testing.T) {
	l := newTestLauncher(t)

	_, err := l.Open(context.Background(), CommandSpec{Command: command.Argv("echo", "x")},
		descriptor.Raw(^uintptr(0)>>1, "bogus"), descriptor.Null(), false)
	assert.ErrorIs(t, err, ErrLaunch)
}
