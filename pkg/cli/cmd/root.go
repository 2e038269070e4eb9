package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/rzbill/easyproc/internal/config"
	"github.com/rzbill/easyproc/pkg/cli/format"
	"github.com/rzbill/easyproc/pkg/host"
	"github.com/rzbill/easyproc/pkg/launcher"
	"github.com/rzbill/easyproc/pkg/log"
	"github.com/rzbill/easyproc/pkg/query"
	"github.com/rzbill/easyproc/pkg/version"
	"github.com/spf13/cobra"
)

// app holds what every command needs. It is filled before a command runs.
type app struct {
	cfg      *config.Config
	logger   log.Logger
	host     *host.Host
	launcher *launcher.Launcher
	engine   *query.Engine
}

type rootOptions struct {
	cfgFile  string
	logLevel string
	verbose  bool
	noColor  bool
}

// ExitError carries the exit code of a child process out of `run`.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("process exited with code %d", e.Code)
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	a := &app{}
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "easyproc",
		Short: "easyproc - launch processes and inspect the process table",
		Long: `easyproc launches external commands with symbolic stdio redirection
and a sanitized environment, and lists the host process table through
the platform tools (PowerShell, WMIC or ps).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is ./easyproc.yaml, $HOME/.easyproc/easyproc.yaml or /etc/easyproc/easyproc.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(
		newPsCmd(a),
		newCmdlineCmd(a),
		newRunCmd(a),
		newEnvCmd(a),
		newWatchCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

func (a *app) init(opts *rootOptions) error {
	if opts.noColor {
		format.EnableColor(false)
	}

	cfg, err := config.Load(opts.cfgFile)
	if err != nil {
		return format.WithHint(err, "fix the config file or pass --config")
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}

	logCfg := cfg.LogConfig()
	logCfg.NoColor = !format.IsColorEnabled()
	logger, err := log.ApplyConfig(logCfg)
	if err != nil {
		return err
	}
	log.SetDefaultLogger(logger)

	a.cfg = cfg
	a.logger = logger
	a.host = host.New(cfg.HostConfig())
	a.launcher = launcher.New(a.host, launcher.WithLogger(logger))
	a.engine = query.NewEngine(a.host, a.launcher,
		query.WithLogger(logger),
		query.WithTimeout(cfg.Query.Timeout))

	logger.Debug("easyproc ready",
		log.Str("family", string(a.host.Family())),
		log.Str("null_device", a.host.NullDevice().Path),
		log.Duration("query_timeout", cfg.Query.Timeout))
	return nil
}

// Execute runs the CLI and exits with a meaningful status.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		format.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
