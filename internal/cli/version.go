package cli

import (
	"runtime"

	"github.com/spf13/cobra"
)

func (a *app) newVersionCommand() *cobra.Command {
	var extended bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			printf(out, "askai-gateway %s\n", a.version.Version)
			if extended {
				printf(out, "Commit: %s\n", a.version.Commit)
				printf(out, "Built: %s\n", a.version.BuildDate)
				printf(out, "Go: %s\n", runtime.Version())
			}
		},
	}
	cmd.Flags().BoolVarP(&extended, "extended", "e", false, "show commit, build date and Go version")
	return cmd
}
