package query

import (
	"context"
	"fmt"

	"github.com/rzbill/easyproc/pkg/command"
	"github.com/rzbill/easyproc/pkg/types"
)

// wmicNode is the administrative column wmic prepends to CSV output.
const wmicNode = "Node"

var wmicTable = Table{
	Header:     []string{wmicNode, "CommandLine", "ExecutablePath", "Name", "ParentProcessId", "ProcessId"},
	Exact:      true,
	MergeIndex: 1,
	Sep:        ",",
}

// WMICLister queries Win32_Process through the legacy wmic tool.
type WMICLister struct {
	tools
}

// Name returns "wmic".
func (l *WMICLister) Name() string { return "wmic" }

// Available reports whether wmic runs on this host.
func (l *WMICLister) Available(ctx context.Context) bool {
	return l.probe(ctx, "wmic", "wmic", "/?")
}

// List runs wmic with f translated into a WQL condition.
func (l *WMICLister) List(ctx context.Context, f *types.FilterSpec) ([]types.ProcessRecord, error) {
	out, err := l.run(ctx, command.Argv(WMICArgs(f)...))
	if err != nil {
		return nil, fmt.Errorf("failed to run wmic: %w", err)
	}
	return l.records(out, wmicTable, l.Name())
}

// WMICArgs builds the wmic argument vector for f.
func WMICArgs(f *types.FilterSpec) []string {
	args := []string{"wmic", "process"}
	if where := WQLWhere(f); where != "" {
		args = append(args, "where", where)
	}
	return append(args, "get", "CommandLine,Name,ExecutablePath,ParentProcessId,ProcessId", "/format:csv")
}
