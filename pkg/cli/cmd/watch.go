package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rzbill/easyproc/pkg/cli/format"
	"github.com/rzbill/easyproc/pkg/log"
	"github.com/rzbill/easyproc/pkg/types"
	"github.com/spf13/cobra"
)

type watchOptions struct {
	filters  filterFlags
	schedule string
	count    int
	output   string
	wide     bool
}

func newWatchCmd(a *app) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "List processes on a schedule",
		Long: `Repeatedly list processes on a cron schedule until interrupted.

The schedule accepts standard five-field cron expressions and descriptors
such as @every 10s or @hourly.`,
		Example: `  # Watch node processes every 5 seconds, three times
  easyproc watch --schedule "@every 5s" --count 3 --contains Name=node`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := opts.filters.spec()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return watchProcesses(ctx, cmd, a, opts, filter)
		},
	}

	opts.filters.register(cmd)
	cmd.Flags().StringVar(&opts.schedule, "schedule", "@every 5s", "cron schedule")
	cmd.Flags().IntVar(&opts.count, "count", 0, "stop after this many listings (0 runs until interrupted)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "table", "output format (table, json, yaml)")
	cmd.Flags().BoolVarP(&opts.wide, "wide", "w", false, "show the executable path")
	return cmd
}

func watchProcesses(ctx context.Context, cmd *cobra.Command, a *app, opts *watchOptions, filter *types.FilterSpec) error {
	out := cmd.OutOrStdout()
	done := make(chan struct{})

	var (
		mu       sync.Mutex
		runs     int
		stopOnce sync.Once
		lastErr  error
	)

	job := func() {
		records := a.engine.List(ctx, filter)

		mu.Lock()
		defer mu.Unlock()
		runs++

		fmt.Fprintln(out, format.Dim("%s  %d processes", time.Now().Format(time.RFC3339), len(records)))
		var err error
		if opts.output == "" || opts.output == "table" {
			table := NewProcessTable()
			table.Wide = opts.wide
			err = table.Render(out, records)
		} else {
			err = writeStructured(out, opts.output, records)
		}
		if err != nil {
			lastErr = err
			stopOnce.Do(func() { close(done) })
			return
		}

		if opts.count > 0 && runs >= opts.count {
			stopOnce.Do(func() { close(done) })
		}
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(opts.schedule, job); err != nil {
		return format.WithHint(fmt.Errorf("invalid schedule %q: %w", opts.schedule, err),
			`use a cron expression such as "*/5 * * * *" or "@every 10s"`)
	}

	a.logger.Debug("watch started", log.Str("schedule", opts.schedule), log.Int("count", opts.count))
	c.Start()
	select {
	case <-ctx.Done():
	case <-done:
	}
	<-c.Stop().Done()

	mu.Lock()
	defer mu.Unlock()
	return lastErr
}
