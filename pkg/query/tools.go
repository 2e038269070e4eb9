package query

import (
	"bytes"
	"context"
	"time"

	"github.com/rzbill/easyproc/pkg/command"
	"github.com/rzbill/easyproc/pkg/host"
	"github.com/rzbill/easyproc/pkg/log"
	"github.com/rzbill/easyproc/pkg/types"
)

// tools is shared by the listers: it runs a tool with the sanitized
// environment and probes tool availability once per host.
type tools struct {
	host    *host.Host
	exec    Executor
	timeout time.Duration
	logger  log.Logger
}

func (t tools) probe(ctx context.Context, name string, args ...string) bool {
	// The outcome is cached for the host lifetime, so it must not depend
	// on the first caller being cancelled.
	ctx = context.WithoutCancel(ctx)
	return t.host.Probe(name, func() bool {
		ok := t.exec.Check(ctx, t.exec.NewCleanSpec(command.Argv(args...), ""), t.timeout)
		t.logger.Debug("tool probed", log.Str("tool", name), log.Bool("available", ok))
		return ok
	})
}

func (t tools) run(ctx context.Context, cmd command.Command) ([]byte, error) {
	return t.exec.Run(ctx, t.exec.NewCleanSpec(cmd, ""), t.timeout)
}

// records parses out with table and converts rows, skipping rows whose
// identifiers are not decimal.
func (t tools) records(out []byte, table Table, lister string) ([]types.ProcessRecord, error) {
	rows, found := table.Parse(bytes.NewReader(out))
	if !found {
		return nil, ErrNoHeader
	}

	records := make([]types.ProcessRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := types.FromRow(row)
		if err != nil {
			t.logger.Debug("skipping row", log.Str("lister", lister), log.Err(err))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
