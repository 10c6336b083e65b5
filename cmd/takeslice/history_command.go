package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"takeslice/internal/ledger"
	"takeslice/internal/services"
	"takeslice/internal/slicer"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded slicing runs, or the jobs of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Ledger.Enabled {
				return services.Wrap(services.ErrConfiguration, "history", "", "the run ledger is disabled (ledger.enabled = false)", nil)
			}
			store, err := ledger.Open(cfg.LedgerPath())
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				return printRunJobs(cmd, store, args[0])
			}
			return printRuns(cmd, store, limit)
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to show (0 = all)")
	return historyCmd
}

func printRuns(cmd *cobra.Command, store *ledger.Store, limit int) error {
	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return nil
	}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			titleCaser.String(string(run.Status)),
			fmt.Sprint(run.SessionCount),
			fmt.Sprint(run.Succeeded),
			fmt.Sprint(run.Skipped),
			fmt.Sprint(run.Failed),
			runDuration(run),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Run", "Started", "Status", "Sessions", "Extracted", "Skipped", "Failed", "Duration"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
	))
	return nil
}

func printRunJobs(cmd *cobra.Command, store *ledger.Store, runID string) error {
	run, err := store.GetRun(cmd.Context(), runID)
	if err != nil {
		if errors.Is(err, ledger.ErrRunNotFound) {
			return services.Wrap(services.ErrNotFound, "history", "", "no run "+runID, nil)
		}
		return err
	}
	jobs, err := store.Jobs(cmd.Context(), run.ID)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s: %s, output %s\n", run.ID, titleCaser.String(string(run.Status)), run.OutputDir)
	if run.ErrorMessage != "" {
		fmt.Fprintf(out, "Error: %s\n", firstLine(run.ErrorMessage))
	}
	if len(jobs) == 0 {
		fmt.Fprintln(out, "No jobs recorded")
		return nil
	}
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, []string{
			job.SessionID,
			filepath.Base(job.Output),
			stateLabel(slicer.JobState(job.State)),
			job.Elapsed.Round(time.Millisecond).String(),
			valueOrDash(firstLine(job.ErrorMessage)),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Session", "Output", "State", "Elapsed", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	))
	return nil
}

func runDuration(run ledger.Run) string {
	if run.FinishedAt.IsZero() {
		return "-"
	}
	return run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()
}
