package log

// RedactedValue replaces the value of redacted fields.
const RedactedValue = "[REDACTED]"

// RedactionHook masks the values of named fields before they are written.
type RedactionHook struct {
	fields map[string]struct{}
}

// NewRedactionHook creates a hook that redacts the given field keys.
func NewRedactionHook(fields []string) *RedactionHook {
	h := &RedactionHook{fields: make(map[string]struct{}, len(fields))}
	for _, f := range fields {
		h.fields[f] = struct{}{}
	}
	return h
}

// Levels returns every level.
func (h *RedactionHook) Levels() []Level {
	return []Level{DebugLevel, InfoLevel, WarnLevel, ErrorLevel}
}

// Fire redacts matching fields of the entry.
func (h *RedactionHook) Fire(entry *Entry) error {
	for key := range entry.Fields {
		if _, ok := h.fields[key]; ok {
			entry.Fields[key] = RedactedValue
		}
	}
	return nil
}
