package descriptor

import (
	"bytes"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpillBuffer_StaysInMemoryUnderLimit(t *testing.T) {
	b, err := NewSpillBuffer(16, t.TempDir())
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Write([]byte("hello "))
	require.NoError(t, err)
	_, err = b.Write([]byte("world"))
	require.NoError(t, err)

	assert.False(t, b.Spilled())
	assert.Equal(t, int64(11), b.Len())

	data, err := b.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestSpillBuffer_SpillsOverLimit(t *testing.T) {
	dir := t.TempDir()
	b, err := NewSpillBuffer(8, dir)
	require.NoError(t, err)

	payload := strings.Repeat("abcdefgh", 100)
	_, err = b.Write([]byte(payload[:4]))
	require.NoError(t, err)
	_, err = b.Write([]byte(payload[4:]))
	require.NoError(t, err)

	assert.True(t, b.Spilled())

	var out bytes.Buffer
	n, err := b.WriteTo(&out)
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)
	assert.Equal(t, payload, out.String())

	// Reading twice returns the same data.
	again, err := b.Bytes()
	require.NoError(t, err)
	assert.Equal(t, payload, string(again))

	require.NoError(t, b.Close())
	matches, err := filepath.Glob(filepath.Join(dir, "easyproc-spill-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)

	_, err = b.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrBufferClosed)
}

func TestSpillBuffer_ConcurrentReadWhileWriting(t *testing.T) {
	b, err := NewSpillBuffer(64, t.TempDir())
	require.NoError(t, err)
	defer b.Close()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_, _ = b.Write([]byte("0123456789"))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_, _ = b.Bytes()
		}
	}()
	wg.Wait()

	assert.Equal(t, int64(2000), b.Len())
}

func TestNewSpillBuffer_Invalid(t *testing.T) {
	_, err := NewSpillBuffer(0, "")
	assert.Error(t, err)

	_, err = NewSpillBuffer(10, filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
