package cmd

import (
	"github.com/spf13/cobra"
)

func newPsCmd(a *app) *cobra.Command {
	var (
		filters   filterFlags
		output    string
		wide      bool
		noHeaders bool
	)

	cmd := &cobra.Command{
		Use:   "ps",
		Short: "List processes",
		Long: `List the host processes, optionally filtered by field.

Fields are ProcessId, ParentProcessId, CommandLine, Name and ExecutablePath
(case-insensitive). Values given for the same field in one flag are ORed;
everything else is ANDed.`,
		Example: `  # Processes named chrome.exe or firefox.exe
  easyproc ps --eq Name=chrome.exe --eq Name=firefox.exe

  # Children of PID 1 that are not shells, as JSON
  easyproc ps --eq ParentProcessId=1 --no-contains Name=sh -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := filters.spec()
			if err != nil {
				return err
			}

			records := a.engine.List(cmd.Context(), filter)

			switch output {
			case "", "table":
				table := NewProcessTable()
				table.Wide = wide
				table.NoHeaders = noHeaders
				return table.Render(cmd.OutOrStdout(), records)
			default:
				return writeStructured(cmd.OutOrStdout(), output, records)
			}
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format (table, json, yaml)")
	cmd.Flags().BoolVarP(&wide, "wide", "w", false, "show the executable path")
	cmd.Flags().BoolVar(&noHeaders, "no-headers", false, "omit the table header")
	return cmd
}
