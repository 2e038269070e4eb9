package log

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// BaseLogger implements the Logger interface.
type BaseLogger struct {
	level     Level
	fields    Fields
	formatter Formatter
	outputs   []Output
	hooks     []Hook
}

// Debug logs a message at the debug level.
func (l *BaseLogger) Debug(msg string, fields ...Field) {
	l.log(DebugLevel, msg, fields)
}

// Info logs a message at the info level.
func (l *BaseLogger) Info(msg string, fields ...Field) {
	l.log(InfoLevel, msg, fields)
}

// Warn logs a message at the warn level.
func (l *BaseLogger) Warn(msg string, fields ...Field) {
	l.log(WarnLevel, msg, fields)
}

// Error logs a message at the error level.
func (l *BaseLogger) Error(msg string, fields ...Field) {
	l.log(ErrorLevel, msg, fields)
}

// With returns a new logger with the fields added to it.
func (l *BaseLogger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}

	child := &BaseLogger{
		level:     l.level,
		formatter: l.formatter,
		outputs:   l.outputs,
		hooks:     l.hooks,
		fields:    make(Fields, len(l.fields)+len(fields)),
	}
	for k, v := range l.fields {
		child.fields[k] = v
	}
	for _, field := range fields {
		child.fields[field.Key] = field.Value
	}
	return child
}

// WithError returns a new logger with the error added as a field.
func (l *BaseLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return l.With(Err(err))
}

// WithComponent returns a new logger with the component field added.
func (l *BaseLogger) WithComponent(component string) Logger {
	return l.With(Component(component))
}

// SetLevel sets the minimum log level.
func (l *BaseLogger) SetLevel(level Level) {
	l.level = level
}

// GetLevel returns the current minimum log level.
func (l *BaseLogger) GetLevel() Level {
	return l.level
}

// Outputs returns the configured log outputs.
func (l *BaseLogger) Outputs() []Output {
	return l.outputs
}

func (l *BaseLogger) log(level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}

	entryFields := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		entryFields[k] = v
	}
	for _, field := range fields {
		entryFields[field.Key] = field.Value
	}

	entry := &Entry{
		Level:     level,
		Message:   msg,
		Fields:    entryFields,
		Timestamp: time.Now(),
		Caller:    caller(3),
	}

	for _, hook := range l.hooks {
		for _, hookLevel := range hook.Levels() {
			if hookLevel == level {
				if err := hook.Fire(entry); err != nil {
					fmt.Fprintf(os.Stderr, "Error firing hook: %v\n", err)
				}
				break
			}
		}
	}

	formatted, err := l.formatter.Format(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting log entry: %v\n", err)
		return
	}

	for _, output := range l.outputs {
		if err := output.Write(entry, formatted); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing to log output: %v\n", err)
		}
	}
}

// caller returns dir/file:line of the logging call site.
func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s/%s:%d", filepath.Base(filepath.Dir(file)), filepath.Base(file), line)
}
