package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"subsmith/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external tool availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)
			missing := 0
			for _, dep := range deps.CheckBinaries(deps.Requirements(cfg)) {
				if dep.Available {
					fmt.Fprintln(stdout, renderStatusLine(dep.Name, statusOK, fmt.Sprintf("Ready (command: %s)", dep.Command), colorize))
					continue
				}
				kind := statusError
				if dep.Optional {
					kind = statusWarn
				} else {
					missing++
				}
				fmt.Fprintln(stdout, renderStatusLine(dep.Name, kind, dep.Detail, colorize))
			}
			if missing > 0 {
				return fmt.Errorf("%d required dependencies missing", missing)
			}
			return nil
		},
	}
}
