package query

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// ErrNoHeader is returned when tool output never showed the expected
// header line.
var ErrNoHeader = errors.New("header not found in tool output")

// Table describes the delimited output of a listing tool.
type Table struct {
	// Header names the expected columns.
	Header []string

	// Exact requires the header line to consist of exactly Header in
	// order. Otherwise any line containing every Header token is the
	// header and its own tokens become the columns.
	Exact bool

	// MergeIndex is the column that may contain the delimiter.
	MergeIndex int

	// MergeColumn, when set, locates MergeIndex by name in the header
	// actually found.
	MergeColumn string

	// Sep is the delimiter used to rejoin merged fields.
	Sep string

	// Split breaks a line into fields.
	Split func(line string) []string
}

// Parse reads tool output line by line. Banner lines before the header
// are skipped; rows are repaired and dropped when their width still
// differs from the header. found is false when no header appeared.
func (t Table) Parse(r io.Reader) (rows []map[string]string, found bool) {
	br := bufio.NewReader(r)

	var cols []string
	merge := t.MergeIndex

	for {
		raw, err := br.ReadString('\n')
		if raw == "" && err != nil {
			break
		}

		line := strings.TrimSpace(strings.ReplaceAll(raw, "\x00", ""))
		if line == "" {
			continue
		}
		fields := t.split(line)

		if cols == nil {
			if t.isHeader(fields) {
				cols = fields
				if t.MergeColumn != "" {
					merge = indexOf(cols, t.MergeColumn)
				}
			}
			continue
		}

		if len(fields) > len(cols) && merge >= 0 {
			fields = Repair(fields, len(cols), merge, t.Sep)
		}
		if len(fields) != len(cols) {
			continue
		}

		row := make(map[string]string, len(cols))
		for i, c := range cols {
			row[c] = fields[i]
		}
		rows = append(rows, row)
	}

	return rows, cols != nil
}

func (t Table) split(line string) []string {
	if t.Split != nil {
		return t.Split(line)
	}
	return strings.Split(line, t.Sep)
}

func (t Table) isHeader(fields []string) bool {
	if t.Exact {
		if len(fields) != len(t.Header) {
			return false
		}
		for i, h := range t.Header {
			if fields[i] != h {
				return false
			}
		}
		return true
	}
	for _, h := range t.Header {
		if indexOf(fields, h) < 0 {
			return false
		}
	}
	return true
}

// Repair merges the surplus fields of an over-wide row back into the
// field at index at, keeping the width-at-1 trailing fields in place.
// Rows that are not over-wide are returned unchanged.
func Repair(row []string, width, at int, sep string) []string {
	trailing := width - at - 1
	if len(row) <= width || at < 0 || trailing < 0 {
		return row
	}

	out := make([]string, 0, width)
	out = append(out, row[:at]...)
	out = append(out, strings.Join(row[at:len(row)-trailing], sep))
	out = append(out, row[len(row)-trailing:]...)
	return out
}

// SplitCSV splits one CSV line, honoring quotes. Malformed lines fall
// back to a plain comma split so Repair can still fix them.
func SplitCSV(line string) []string {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	fields, err := r.Read()
	if err != nil {
		return strings.Split(line, ",")
	}
	return fields
}

// SplitFields returns a splitter on runs of whitespace yielding at most
// n fields; the last field keeps its inner spacing.
func SplitFields(n int) func(string) []string {
	return func(line string) []string {
		var out []string
		rest := strings.TrimSpace(line)
		for len(out) < n-1 && rest != "" {
			i := strings.IndexFunc(rest, isSpace)
			if i < 0 {
				break
			}
			out = append(out, rest[:i])
			rest = strings.TrimLeftFunc(rest[i:], isSpace)
		}
		if rest != "" {
			out = append(out, rest)
		}
		return out
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
