package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(buf *bytes.Buffer, level Level, f Formatter) Logger {
	return NewLogger(WithLevel(level), WithFormatter(f), WithOutput(NewWriterOutput(buf)))
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, WarnLevel, &TextFormatter{DisableColors: true, DisableTimestamp: true})

	logger.Info("hidden")
	logger.Warn("shown", Str("slot", "stdout"))

	assert.NotContains(t, buf.String(), "hidden")
	assert.Equal(t, "WRN shown slot=stdout\n", buf.String())
}

func TestLogger_WithDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := newBufferLogger(&buf, DebugLevel, &TextFormatter{DisableColors: true, DisableTimestamp: true})
	child := parent.WithComponent("launcher")

	parent.Info("parent")
	child.Info("child")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Equal(t, "INF parent", string(lines[0]))
	assert.Equal(t, "INF child component=launcher", string(lines[1]))
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, InfoLevel, &JSONFormatter{DisableTimestamp: true})

	logger.WithError(errors.New("boom")).Error("launch failed", Int("pid", 42))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "error", got["level"])
	assert.Equal(t, "launch failed", got["msg"])
	assert.Equal(t, "boom", got["error"])
	assert.Equal(t, float64(42), got["pid"])
	assert.NotContains(t, got, "ts")
}

func TestRedactionHook(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(
		WithFormatter(&TextFormatter{DisableColors: true, DisableTimestamp: true}),
		WithOutput(NewWriterOutput(&buf)),
		WithHook(NewRedactionHook([]string{"token"})),
	)

	logger.Info("env", Str("token", "s3cr3t"), Str("user", "bob"))
	assert.Equal(t, "INF env token=[REDACTED] user=bob\n", buf.String())
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("WARNING")
	require.NoError(t, err)
	assert.Equal(t, WarnLevel, level)

	_, err = ParseLevel("fatal")
	assert.Error(t, err)
}

func TestApplyConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "easyproc.log")
	logger, err := ApplyConfig(&Config{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)

	logger.Debug("probe", Str("name", "ps"))
	for _, o := range logger.(*BaseLogger).Outputs() {
		require.NoError(t, o.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"probe"`)

	_, err = ApplyConfig(&Config{Format: "xml"})
	assert.Error(t, err)
}

func TestContextLogger(t *testing.T) {
	tl := NewTestLogger()
	ctx := WithLogger(context.Background(), tl)
	FromContext(ctx).Info("hello")

	assert.True(t, tl.AssertLogged(InfoLevel, "hello"))
	assert.Equal(t, GetDefaultLogger(), FromContext(context.Background()))
}

func TestTestLogger_SharesCapture(t *testing.T) {
	tl := NewTestLogger()
	tl.WithComponent("query").Warn("lister failed", Str("lister", "wmic"))

	assert.True(t, tl.AssertLoggedWithField(WarnLevel, "lister failed", "lister", "wmic"))
	assert.True(t, tl.AssertLoggedWithField(WarnLevel, "lister failed", ComponentKey, "query"))

	tl.ClearEntries()
	assert.Empty(t, tl.GetEntries())
}
