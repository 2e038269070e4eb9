package query

import (
	"strings"

	"github.com/rzbill/easyproc/pkg/types"
)

// Matches evaluates f against r in memory with the semantics of the
// Windows translations. Comparisons ignore case.
func Matches(f *types.FilterSpec, r types.ProcessRecord) bool {
	if f.IsEmpty() {
		return true
	}

	for _, c := range clauses(f.Eq) {
		if !anyValue(c, r, strings.EqualFold) {
			return false
		}
	}
	for _, c := range clauses(f.Diff) {
		if anyValue(c, r, strings.EqualFold) {
			return false
		}
	}
	for _, c := range clauses(f.Contains) {
		if !anyValue(c, r, containsFold) {
			return false
		}
	}
	for _, c := range clauses(f.NoContains) {
		if anyValue(c, r, containsFold) {
			return false
		}
	}
	return true
}

// Filter returns the records matching f.
func Filter(f *types.FilterSpec, records []types.ProcessRecord) []types.ProcessRecord {
	out := make([]types.ProcessRecord, 0, len(records))
	for _, r := range records {
		if Matches(f, r) {
			out = append(out, r)
		}
	}
	return out
}

func anyValue(c clause, r types.ProcessRecord, cmp func(s, v string) bool) bool {
	s := r.Get(c.field)
	for _, v := range c.values {
		if cmp(s, v) {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
