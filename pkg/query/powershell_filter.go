// Package query lists the host process table through the platform tools
// and normalizes their output into process records.
package query

import (
	"strings"

	"github.com/rzbill/easyproc/pkg/types"
)

// clause pairs the values of one filter category with a field.
type clause struct {
	field  types.Field
	values []string
}

// clauses returns the usable entries of m in canonical field order.
func clauses(m map[types.Field][]string) []clause {
	var out []clause
	for _, f := range types.Fields {
		if values := m[f]; len(values) > 0 {
			out = append(out, clause{field: f, values: values})
		}
	}
	return out
}

// PowerShellPredicate renders f as the body of a Where-Object script
// block. An empty filter renders as "".
func PowerShellPredicate(f *types.FilterSpec) string {
	if f.IsEmpty() {
		return ""
	}

	var where []string
	for _, c := range clauses(f.Eq) {
		where = append(where, "$_."+string(c.field)+" -in "+psList(c.values))
	}
	for _, c := range clauses(f.Diff) {
		where = append(where, "$_."+string(c.field)+" -notin "+psList(c.values))
	}
	for _, c := range clauses(f.Contains) {
		where = append(where, psLike(c, "-like", " -or "))
	}
	for _, c := range clauses(f.NoContains) {
		where = append(where, psLike(c, "-notlike", " -and "))
	}
	return strings.Join(where, " -and ")
}

func psList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = psQuote(v)
	}
	return "@(" + strings.Join(quoted, ",") + ")"
}

func psLike(c clause, op, join string) string {
	parts := make([]string, len(c.values))
	for i, v := range c.values {
		parts[i] = "$_." + string(c.field) + " " + op + " " + psQuote("*"+psWildcardEscape(v)+"*")
	}
	return "(" + strings.Join(parts, join) + ")"
}

// psQuote renders s as a single-quoted PowerShell literal.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

var psWildcards = strings.NewReplacer("`", "``", "*", "`*", "?", "`?", "[", "`[", "]", "`]")

// psWildcardEscape makes s match literally inside a -like pattern.
func psWildcardEscape(s string) string {
	return psWildcards.Replace(s)
}
