package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Field names a column of the host process table.
type Field string

// Recognized process fields
const (
	FieldProcessID       Field = "ProcessId"
	FieldParentProcessID Field = "ParentProcessId"
	FieldCommandLine     Field = "CommandLine"
	FieldName            Field = "Name"
	FieldExecutablePath  Field = "ExecutablePath"
)

// Fields lists the recognized fields in canonical order.
var Fields = []Field{
	FieldProcessID,
	FieldParentProcessID,
	FieldCommandLine,
	FieldName,
	FieldExecutablePath,
}

// IsValid reports whether f is one of the recognized fields.
func (f Field) IsValid() bool {
	for _, known := range Fields {
		if f == known {
			return true
		}
	}
	return false
}

// ParseField resolves a field name case-insensitively.
func ParseField(name string) (Field, error) {
	for _, known := range Fields {
		if strings.EqualFold(string(known), name) {
			return known, nil
		}
	}
	return "", NewValidationError(fmt.Sprintf("unknown process field: %s", name))
}

// ProcessRecord is one normalized row of the host process table.
type ProcessRecord struct {
	ProcessID       int64  `json:"ProcessId" yaml:"ProcessId"`
	ParentProcessID int64  `json:"ParentProcessId" yaml:"ParentProcessId"`
	CommandLine     string `json:"CommandLine" yaml:"CommandLine"`
	Name            string `json:"Name" yaml:"Name"`
	ExecutablePath  string `json:"ExecutablePath" yaml:"ExecutablePath"`
}

// Get returns the textual value of a field.
func (r ProcessRecord) Get(f Field) string {
	switch f {
	case FieldProcessID:
		return strconv.FormatInt(r.ProcessID, 10)
	case FieldParentProcessID:
		return strconv.FormatInt(r.ParentProcessID, 10)
	case FieldCommandLine:
		return r.CommandLine
	case FieldName:
		return r.Name
	case FieldExecutablePath:
		return r.ExecutablePath
	default:
		return ""
	}
}

// FromRow builds a record from a parsed table row keyed by field name.
// Identifiers must be decimal; extra keys are ignored.
func FromRow(row map[string]string) (ProcessRecord, error) {
	pid, err := parseID(row[string(FieldProcessID)])
	if err != nil {
		return ProcessRecord{}, fmt.Errorf("invalid %s: %w", FieldProcessID, err)
	}

	ppid, err := parseID(row[string(FieldParentProcessID)])
	if err != nil {
		return ProcessRecord{}, fmt.Errorf("invalid %s: %w", FieldParentProcessID, err)
	}

	return ProcessRecord{
		ProcessID:       pid,
		ParentProcessID: ppid,
		CommandLine:     row[string(FieldCommandLine)],
		Name:            row[string(FieldName)],
		ExecutablePath:  row[string(FieldExecutablePath)],
	}, nil
}

// Map returns the record as a map with exactly the five field names.
func (r ProcessRecord) Map() map[string]string {
	m := make(map[string]string, len(Fields))
	for _, f := range Fields {
		m[string(f)] = r.Get(f)
	}
	return m
}

func parseID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty identifier")
	}
	return strconv.ParseInt(s, 10, 64)
}
