package query

import (
	"strings"

	"github.com/rzbill/easyproc/pkg/types"
)

// WQLWhere renders f as a WQL WHERE condition. An empty filter renders
// as "".
func WQLWhere(f *types.FilterSpec) string {
	if f.IsEmpty() {
		return ""
	}

	var where []string
	for _, c := range clauses(f.Eq) {
		where = append(where, "("+wqlAny(c, "=", "'", "'")+")")
	}
	for _, c := range clauses(f.Diff) {
		where = append(where, "NOT("+wqlAny(c, "=", "'", "'")+")")
	}
	for _, c := range clauses(f.Contains) {
		where = append(where, "("+wqlAny(c, " like ", "'%", "%'")+")")
	}
	for _, c := range clauses(f.NoContains) {
		where = append(where, "NOT("+wqlAny(c, " like ", "'%", "%'")+")")
	}
	return strings.Join(where, " and ")
}

func wqlAny(c clause, op, prefix, suffix string) string {
	parts := make([]string, len(c.values))
	for i, v := range c.values {
		parts[i] = string(c.field) + op + prefix + wqlEscape(v) + suffix
	}
	return strings.Join(parts, " or ")
}

var wqlEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `"`, `\"`)

// wqlEscape backslash-escapes quotes and backslashes.
func wqlEscape(s string) string {
	return wqlEscaper.Replace(s)
}
