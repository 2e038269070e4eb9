package query

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/rzbill/easyproc/pkg/command"
	"github.com/rzbill/easyproc/pkg/types"
)

var psTable = Table{
	Header:     []string{"PID", "PPID", "COMMAND"},
	Exact:      true,
	MergeIndex: -1,
	Split:      SplitFields(3),
}

// PsLister lists processes with ps(1) and filters them in memory.
type PsLister struct {
	tools
}

// Name returns "ps".
func (l *PsLister) Name() string { return "ps" }

// Available reports whether ps can describe the current process.
func (l *PsLister) Available(ctx context.Context) bool {
	return l.probe(ctx, "ps", "ps", "-p", strconv.Itoa(os.Getpid()), "-o", "pid=")
}

// List returns every process matching f.
func (l *PsLister) List(ctx context.Context, f *types.FilterSpec) ([]types.ProcessRecord, error) {
	out, err := l.run(ctx, command.Argv("ps", "-A", "-ww", "-o", "pid=PID", "-o", "ppid=PPID", "-o", "args=COMMAND"))
	if err != nil {
		return nil, fmt.Errorf("failed to run ps: %w", err)
	}

	rows, found := psTable.Parse(strings.NewReader(string(out)))
	if !found {
		return nil, ErrNoHeader
	}

	records := make([]types.ProcessRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := psRecord(row)
		if err != nil {
			continue
		}
		if Matches(f, rec) {
			records = append(records, rec)
		}
	}
	return records, nil
}

func psRecord(row map[string]string) (types.ProcessRecord, error) {
	cmdline := row["COMMAND"]

	var name, path string
	switch {
	case strings.HasPrefix(cmdline, "[") && strings.HasSuffix(cmdline, "]"):
		// kernel thread
		name = strings.Trim(cmdline, "[]")
	default:
		if exe := executable(cmdline); exe != "" {
			name = filepath.Base(exe)
			if filepath.IsAbs(exe) {
				path = exe
			}
		}
	}

	return types.FromRow(map[string]string{
		string(types.FieldProcessID):       row["PID"],
		string(types.FieldParentProcessID): row["PPID"],
		string(types.FieldCommandLine):     cmdline,
		string(types.FieldName):            name,
		string(types.FieldExecutablePath):  path,
	})
}

// executable returns argv[0] of a ps args column. Unbalanced quoting
// falls back to the first whitespace token.
func executable(cmdline string) string {
	if args, err := shlex.Split(cmdline); err == nil && len(args) > 0 {
		return args[0]
	}
	if fields := strings.Fields(cmdline); len(fields) > 0 {
		return fields[0]
	}
	return ""
}
