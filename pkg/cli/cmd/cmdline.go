package cmd

import (
	"fmt"
	"strconv"

	"github.com/rzbill/easyproc/pkg/cli/format"
	"github.com/rzbill/easyproc/pkg/types"
	"github.com/spf13/cobra"
)

func newCmdlineCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cmdline PID",
		Short: "Print the command line of a process",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || pid < 0 {
				return types.NewValidationError(fmt.Sprintf("invalid pid: %s", args[0]))
			}

			line, ok := a.engine.Command(cmd.Context(), pid)
			if !ok {
				return format.WithHint(fmt.Errorf("no command line found for pid %d", pid),
					"the process may have exited or belong to another user")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), line)
			return err
		},
	}
}
