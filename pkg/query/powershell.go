package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/rzbill/easyproc/pkg/command"
	"github.com/rzbill/easyproc/pkg/types"
)

var powerShellTable = Table{
	Header:      []string{"ProcessId", "Name", "ExecutablePath"},
	MergeColumn: string(types.FieldCommandLine),
	Sep:         ",",
	Split:       SplitCSV,
}

// PowerShellLister queries Win32_Process through Get-CimInstance.
type PowerShellLister struct {
	tools
}

// Name returns "powershell".
func (l *PowerShellLister) Name() string { return "powershell" }

// Available reports whether powershell runs on this host.
func (l *PowerShellLister) Available(ctx context.Context) bool {
	return l.probe(ctx, "powershell", "powershell", "/?")
}

// List runs the CIM query with f translated into a Where-Object filter.
func (l *PowerShellLister) List(ctx context.Context, f *types.FilterSpec) ([]types.ProcessRecord, error) {
	out, err := l.run(ctx, command.Argv("powershell", "-NoProfile", "-NonInteractive", "-Command", PowerShellScript(f)))
	if err != nil {
		return nil, fmt.Errorf("failed to run powershell: %w", err)
	}
	return l.records(out, powerShellTable, l.Name())
}

// PowerShellScript builds the listing pipeline for f.
func PowerShellScript(f *types.FilterSpec) string {
	var sb strings.Builder
	sb.WriteString("Get-CimInstance Win32_Process ")
	if where := PowerShellPredicate(f); where != "" {
		sb.WriteString("| Where-Object {" + where + "} ")
	}
	sb.WriteString("| Select-Object ")
	for i, field := range types.Fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(string(field))
	}
	sb.WriteString(" | ConvertTo-Csv -NoTypeInformation")
	return sb.String()
}
