package log

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
)

// JSONFormatter formats log entries as one JSON object per line.
type JSONFormatter struct {
	TimestampFormat  string
	DisableTimestamp bool
}

// NewJSONFormatter creates a JSON formatter with RFC3339 timestamps.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{TimestampFormat: time.RFC3339}
}

// Format formats a log entry as JSON.
func (f *JSONFormatter) Format(entry *Entry) ([]byte, error) {
	data := make(map[string]interface{}, len(entry.Fields)+4)
	for k, v := range entry.Fields {
		switch val := v.(type) {
		case error:
			data[k] = val.Error()
		case time.Duration:
			data[k] = val.String()
		default:
			data[k] = v
		}
	}

	data["level"] = strings.ToLower(entry.Level.String())
	data["msg"] = entry.Message
	if !f.DisableTimestamp {
		data["ts"] = entry.Timestamp.Format(f.TimestampFormat)
	}
	if entry.Caller != "" {
		data["caller"] = entry.Caller
	}

	out, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal log entry: %w", err)
	}
	return append(out, '\n'), nil
}

// TextFormatter formats log entries for humans.
type TextFormatter struct {
	TimestampFormat  string
	DisableTimestamp bool
	DisableColors    bool
	ShowCaller       bool
}

// NewTextFormatter creates a colored text formatter.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{TimestampFormat: "15:04:05.000"}
}

var (
	dim      = color.New(color.FgHiBlack)
	keyColor = color.New(color.FgCyan)
)

// Format formats a log entry as a single text line.
func (f *TextFormatter) Format(entry *Entry) ([]byte, error) {
	var b strings.Builder

	if !f.DisableTimestamp {
		ts := entry.Timestamp.Format(f.TimestampFormat)
		if !f.DisableColors {
			ts = dim.Sprint(ts)
		}
		b.WriteString(ts)
		b.WriteByte(' ')
	}

	b.WriteString(f.level(entry.Level))
	b.WriteByte(' ')
	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Fields))
	for k := range entry.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		key := k
		if !f.DisableColors {
			key = keyColor.Sprint(k)
		}
		fmt.Fprintf(&b, " %s=%v", key, entry.Fields[k])
	}

	if f.ShowCaller && entry.Caller != "" {
		caller := "(" + entry.Caller + ")"
		if !f.DisableColors {
			caller = dim.Sprint(caller)
		}
		b.WriteByte(' ')
		b.WriteString(caller)
	}

	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func (f *TextFormatter) level(l Level) string {
	var short string
	var c *color.Color
	switch l {
	case DebugLevel:
		short, c = "DBG", color.New(color.FgBlue)
	case InfoLevel:
		short, c = "INF", color.New(color.FgGreen)
	case WarnLevel:
		short, c = "WRN", color.New(color.FgYellow)
	case ErrorLevel:
		short, c = "ERR", color.New(color.FgRed)
	default:
		return l.String()
	}
	if f.DisableColors {
		return short
	}
	return c.Sprint(short)
}
