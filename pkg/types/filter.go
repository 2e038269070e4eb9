package types

import "fmt"

// FilterSpec selects processes by field. Each category maps a field to the
// values it is tested against; fields within a category and across
// categories are ANDed.
type FilterSpec struct {
	// Eq keeps processes whose field equals one of the values.
	Eq map[Field][]string `json:"eq,omitempty" yaml:"eq,omitempty"`

	// Diff keeps processes whose field equals none of the values.
	Diff map[Field][]string `json:"diff,omitempty" yaml:"diff,omitempty"`

	// Contains keeps processes whose field contains any of the values.
	Contains map[Field][]string `json:"contains,omitempty" yaml:"contains,omitempty"`

	// NoContains keeps processes whose field contains none of the values.
	NoContains map[Field][]string `json:"no_contains,omitempty" yaml:"no_contains,omitempty"`
}

// NewFilter returns an empty filter.
func NewFilter() *FilterSpec {
	return &FilterSpec{}
}

// WithEq adds equality values for a field.
func (f *FilterSpec) WithEq(field Field, values ...interface{}) *FilterSpec {
	f.Eq = addValues(f.Eq, field, values)
	return f
}

// WithDiff adds excluded values for a field.
func (f *FilterSpec) WithDiff(field Field, values ...interface{}) *FilterSpec {
	f.Diff = addValues(f.Diff, field, values)
	return f
}

// WithContains adds substrings of which at least one must match.
func (f *FilterSpec) WithContains(field Field, values ...interface{}) *FilterSpec {
	f.Contains = addValues(f.Contains, field, values)
	return f
}

// WithNoContains adds substrings of which none may match.
func (f *FilterSpec) WithNoContains(field Field, values ...interface{}) *FilterSpec {
	f.NoContains = addValues(f.NoContains, field, values)
	return f
}

// IsEmpty reports whether the filter holds no usable condition. Unknown
// fields and empty value lists do not count.
func (f *FilterSpec) IsEmpty() bool {
	if f == nil {
		return true
	}
	for _, category := range []map[Field][]string{f.Eq, f.Diff, f.Contains, f.NoContains} {
		for field, values := range category {
			if field.IsValid() && len(values) > 0 {
				return false
			}
		}
	}
	return true
}

func addValues(m map[Field][]string, field Field, values []interface{}) map[Field][]string {
	if m == nil {
		m = make(map[Field][]string)
	}
	for _, v := range values {
		m[field] = append(m[field], fmt.Sprint(v))
	}
	return m
}
