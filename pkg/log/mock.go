package log

import (
	"strings"
	"sync"
)

// TestEntry represents a captured log entry for testing
type TestEntry struct {
	Level   Level
	Message string
	Fields  []Field
}

type testSink struct {
	mu      sync.Mutex
	entries []TestEntry
}

// TestLogger is a Logger implementation for testing that captures logs
// without producing output. Loggers derived with With share the capture.
type TestLogger struct {
	sink   *testSink
	fields []Field
	level  Level
}

// NewTestLogger creates a new TestLogger capturing every level.
func NewTestLogger() *TestLogger {
	return &TestLogger{sink: &testSink{}, level: DebugLevel}
}

// GetEntries returns all captured log entries
func (l *TestLogger) GetEntries() []TestEntry {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	result := make([]TestEntry, len(l.sink.entries))
	copy(result, l.sink.entries)
	return result
}

// ClearEntries clears all captured log entries
func (l *TestLogger) ClearEntries() {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.entries = nil
}

func (l *TestLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields) }
func (l *TestLogger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields) }
func (l *TestLogger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields) }
func (l *TestLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields) }

func (l *TestLogger) log(level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}

	all := make([]Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.entries = append(l.sink.entries, TestEntry{Level: level, Message: msg, Fields: all})
}

// With returns a logger sharing the capture with extra fields.
func (l *TestLogger) With(fields ...Field) Logger {
	child := &TestLogger{sink: l.sink, level: l.level}
	child.fields = append(append(child.fields, l.fields...), fields...)
	return child
}

// WithError adds an error field.
func (l *TestLogger) WithError(err error) Logger {
	return l.With(Err(err))
}

// WithComponent adds a component field.
func (l *TestLogger) WithComponent(component string) Logger {
	return l.With(Component(component))
}

// SetLevel sets the minimum captured level.
func (l *TestLogger) SetLevel(level Level) { l.level = level }

// GetLevel returns the minimum captured level.
func (l *TestLogger) GetLevel() Level { return l.level }

// AssertLogged reports whether an entry at level contains the message.
func (l *TestLogger) AssertLogged(level Level, containsMessage string) bool {
	for _, e := range l.GetEntries() {
		if e.Level == level && strings.Contains(e.Message, containsMessage) {
			return true
		}
	}
	return false
}

// AssertLoggedWithField is AssertLogged that also requires key=value.
func (l *TestLogger) AssertLoggedWithField(level Level, containsMessage string, key string, value interface{}) bool {
	for _, e := range l.GetEntries() {
		if e.Level != level || !strings.Contains(e.Message, containsMessage) {
			continue
		}
		for _, f := range e.Fields {
			if f.Key == key && f.Value == value {
				return true
			}
		}
	}
	return false
}
