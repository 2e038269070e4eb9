package cmd

import (
	"fmt"

	"github.com/rzbill/easyproc/pkg/host"
	"github.com/spf13/cobra"
)

func newEnvCmd(a *app) *cobra.Command {
	var (
		output  string
		removed bool
	)

	cmd := &cobra.Command{
		Use:   "env",
		Short: "Print the sanitized environment",
		Long: `Print the environment that --clean-env launches receive: the current
environment without web server, session and desktop variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := a.host.CleanEnv()
			if removed {
				env = removedEnv(a.host.Ambient())
			}

			switch output {
			case "", "text":
				for _, kv := range host.EnvironFromMap(env) {
					fmt.Fprintln(cmd.OutOrStdout(), kv)
				}
				return nil
			default:
				return writeStructured(cmd.OutOrStdout(), output, env)
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text, json, yaml)")
	cmd.Flags().BoolVar(&removed, "removed", false, "print the variables that are removed instead")
	return cmd
}

// removedEnv returns the ambient variables the sanitizer drops.
func removedEnv(ambient map[string]string) map[string]string {
	out := make(map[string]string)
	for k, v := range ambient {
		if host.IsDenied(k) {
			out[k] = v
		}
	}
	return out
}
