package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"takeslice/internal/deps"
	"takeslice/internal/preflight"
	"takeslice/internal/services"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var noVideo bool

	cmd := &cobra.Command{
		Use:   "check [project]",
		Short: "Verify external tools and project directories",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.runConfig()
			if err != nil {
				return err
			}
			if len(args) > 0 {
				if err := cfg.ApplyProject(args[0]); err != nil {
					return services.Wrap(services.ErrConfiguration, "check", "project", args[0], err)
				}
			}

			out := cmd.OutOrStdout()
			results := preflight.RunAll(cfg, !noVideo)
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				status := "OK"
				if !r.Passed {
					status = "FAIL"
				}
				rows = append(rows, []string{r.Name, status, valueOrDash(r.Detail)})
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows, nil))

			for _, status := range preflight.CheckSystemDeps(cfg) {
				if !status.Available {
					if status.Optional {
						fmt.Fprintf(out, "%s not found (optional): %s\n", status.Name, status.Description)
					}
					continue
				}
				version, err := deps.Version(cmd.Context(), status.Path)
				if err != nil {
					fmt.Fprintf(out, "%s: version unknown (%v)\n", status.Name, err)
					continue
				}
				fmt.Fprintf(out, "%s: %s\n", status.Name, version)
			}

			if failed := preflight.Failed(results); len(failed) > 0 {
				return services.Wrap(services.ErrConfiguration, "check", "", preflight.Summary(results), nil)
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
	cmd.Flags().BoolVar(&noVideo, "no-video", false, "Skip video directory checks")
	return cmd
}
