package cmd

import (
	"fmt"

	"github.com/rzbill/easyproc/pkg/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the easyproc version information",
		Long:  `Display detailed version information about the easyproc binary.`,
		Args:  cobra.NoArgs,
		// No config needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" || output == "text" {
				fmt.Fprintln(cmd.OutOrStdout(), version.Info())
				return nil
			}
			return writeStructured(cmd.OutOrStdout(), output, version.Map())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text, json, yaml)")
	return cmd
}
