package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/rzbill/easyproc/pkg/types"
	"golang.org/x/term"
)

// ProcessTable renders process records.
type ProcessTable struct {
	// Wide adds the executable path column.
	Wide bool

	// NoHeaders omits the header row.
	NoHeaders bool

	// MaxWidth truncates the command column; 0 disables truncation.
	MaxWidth int

	tableRenderer *pterm.TablePrinter
}

// NewProcessTable creates a table sized to the terminal when stdout is one.
func NewProcessTable() *ProcessTable {
	table := pterm.DefaultTable.WithHasHeader(true)
	table = table.WithHeaderStyle(pterm.NewStyle(pterm.FgCyan, pterm.Bold))

	t := &ProcessTable{tableRenderer: table}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		t.MaxWidth = w
	}
	return t
}

// Rows returns the table cells, header first.
func (t *ProcessTable) Rows(records []types.ProcessRecord) [][]string {
	headers := []string{"PID", "PPID", "NAME", "COMMAND"}
	if t.Wide {
		headers = []string{"PID", "PPID", "NAME", "EXECUTABLE", "COMMAND"}
	}

	rows := [][]string{headers}
	for _, r := range records {
		row := []string{
			strconv.FormatInt(r.ProcessID, 10),
			strconv.FormatInt(r.ParentProcessID, 10),
			r.Name,
		}
		if t.Wide {
			row = append(row, r.ExecutablePath)
		}
		row = append(row, r.CommandLine)
		rows = append(rows, row)
	}

	if t.MaxWidth > 0 {
		t.truncateLast(rows)
	}
	return rows
}

// truncateLast shortens the command column so rows fit MaxWidth.
func (t *ProcessTable) truncateLast(rows [][]string) {
	last := len(rows[0]) - 1
	used := 0
	for col := 0; col < last; col++ {
		widest := 0
		for _, row := range rows {
			if len(row[col]) > widest {
				widest = len(row[col])
			}
		}
		used += widest + 3
	}

	room := t.MaxWidth - used
	if room < 10 {
		room = 10
	}
	for _, row := range rows[1:] {
		if r := []rune(row[last]); len(r) > room {
			row[last] = string(r[:room-3]) + "..."
		}
	}
}

// Render writes the table to w.
func (t *ProcessTable) Render(w io.Writer, records []types.ProcessRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No processes found")
		return err
	}

	rows := t.Rows(records)
	renderer := t.tableRenderer.WithHasHeader(!t.NoHeaders)
	if t.NoHeaders {
		rows = rows[1:]
	}

	out, err := renderer.WithData(rows).Srender()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	_, err = fmt.Fprintln(w, out)
	return err
}
