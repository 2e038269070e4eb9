package cmd

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rzbill/easyproc/pkg/cli/format"
	"github.com/rzbill/easyproc/pkg/command"
	"github.com/rzbill/easyproc/pkg/descriptor"
	"github.com/rzbill/easyproc/pkg/launcher"
	"github.com/rzbill/easyproc/pkg/log"
	"github.com/spf13/cobra"
)

type runOptions struct {
	stdout   string
	stderr   string
	stdin    bool
	timeout  time.Duration
	cwd      string
	cleanEnv bool
	shell    bool
}

func newRunCmd(a *app) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [flags] -- COMMAND [ARGS...]",
		Short: "Run a command with stdio redirection",
		Long: `Run a command and route its output and error streams.

Stream targets:
  inherit, output  share this terminal
  null             discard
  temp, tmp        capture in memory (spilling to disk) and print on exit
  pipe             stream through a pipe
  stdout, stderr   write to this process' stdout or stderr
  any other value  write to that file, truncating it`,
		Example: `  # Capture output, discard errors, give up after 10s
  easyproc run --stdout temp --stderr null --timeout 10s -- make test

  # Shell line with the sanitized environment
  easyproc run --shell --clean-env -- 'env | sort'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd, a, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.stdout, "stdout", "inherit", "output stream target")
	cmd.Flags().StringVar(&opts.stderr, "stderr", "inherit", "error stream target")
	cmd.Flags().BoolVar(&opts.stdin, "stdin", false, "forward this process' input to the command")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "terminate the command after this long (0 waits forever)")
	cmd.Flags().StringVar(&opts.cwd, "cwd", "", "working directory")
	cmd.Flags().BoolVar(&opts.cleanEnv, "clean-env", false, "run with the sanitized environment")
	cmd.Flags().BoolVar(&opts.shell, "shell", false, "run the arguments as one shell line")
	return cmd
}

func runCommand(cmd *cobra.Command, a *app, opts *runOptions, args []string) error {
	c := command.Argv(args...)
	if opts.shell {
		c = command.Line(strings.Join(args, " "))
	}

	spec := launcher.CommandSpec{Command: c, Dir: opts.cwd}
	if opts.cleanEnv {
		spec = a.launcher.NewCleanSpec(c, opts.cwd)
	}

	stdout := descriptor.Parse(opts.stdout)
	stderr := descriptor.Parse(opts.stderr)

	h, err := a.launcher.Open(cmd.Context(), spec, stdout, stderr, opts.stdin)
	if err != nil {
		return format.WithHint(err, "check that the command exists and the working directory is valid")
	}
	defer h.Close()

	if in := h.Stdin(); in != nil {
		go func() {
			io.Copy(in, cmd.InOrStdin())
			h.CloseInput()
		}()
	}

	// Pipes are drained while the command runs.
	var wg sync.WaitGroup
	if stdout.Kind == descriptor.AnonymousPipe {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.CopyOutputTo(cmd.OutOrStdout())
		}()
	}
	if r := h.Stderr(); stderr.Kind == descriptor.AnonymousPipe && r != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			io.Copy(cmd.ErrOrStderr(), r)
		}()
	}

	if h.Await(opts.timeout) {
		a.logger.Warn("command timed out, terminating", log.Duration("timeout", opts.timeout), log.Int("pid", h.Pid()))
		fmt.Fprintln(cmd.ErrOrStderr(), format.Warning("timed out after %s", opts.timeout))
		if err := h.Terminate(); err != nil {
			return fmt.Errorf("failed to terminate process %d: %w", h.Pid(), err)
		}
		h.Wait()
	}
	wg.Wait()

	if stdout.Kind == descriptor.Temporary {
		h.CopyOutputTo(cmd.OutOrStdout())
	}
	if stderr.Kind == descriptor.Temporary {
		if data, err := h.ReadError(); err == nil {
			cmd.ErrOrStderr().Write(data)
		}
	}

	if code, ok := h.ExitCode(); ok && code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}
