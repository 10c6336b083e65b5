package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"takeslice/internal/config"
	"takeslice/internal/logging"
	"takeslice/internal/pipeline"
	"takeslice/internal/preflight"
	"takeslice/internal/services"
	"takeslice/internal/slicer"
)

type sliceFlags struct {
	sessions   string
	video      string
	output     string
	ffmpegPath string
	workers    int
	noVideo    bool
	quiet      bool
}

func newSliceCommand(ctx *commandContext) *cobra.Command {
	var flags sliceFlags

	cmd := &cobra.Command{
		Use:   "slice [project]",
		Short: "Extract every take of every session into the output directory",
		Long: "Extract every take of every session into the output directory.\n\n" +
			"A project directory supplies defaults: <project>/sessions, <project>/video and\n" +
			"<project>/takes. Existing outputs are skipped, so re-running only fills gaps.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.runConfig()
			if err != nil {
				return err
			}
			if err := applySliceFlags(cfg, flags, args); err != nil {
				return err
			}
			logger, err := ctx.logger(cmd, cfg)
			if err != nil {
				return err
			}

			withVideo := !flags.noVideo
			results := preflight.RunAll(cfg, withVideo)
			if failed := preflight.Failed(results); len(failed) > 0 {
				return services.Wrap(services.ErrConfiguration, "preflight", "", preflight.Summary(results), nil)
			}
			if withVideo && cfg.Sync.Strategy == config.StrategyInteractive && !isTerminal(cmd.InOrStdin()) {
				logging.WarnWithContext(logger, "standard input is not a terminal", "stdin_not_tty",
					logging.String(logging.FieldImpact, "offset prompts read from piped input"),
					logging.String(logging.FieldErrorHint, "supply one offset per line or pre-populate the offset cache"))
			}

			opts := []pipeline.Option{pipeline.WithPromptIO(cmd.InOrStdin(), cmd.OutOrStdout())}
			if flags.noVideo {
				opts = append(opts, pipeline.WithoutVideo())
			}
			if !flags.quiet {
				opts = append(opts, pipeline.WithObserver(progressPrinter(cmd.OutOrStdout())))
			}

			summary, err := pipeline.New(cfg, logger, opts...).Run(cmd.Context())
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary)
			if summary.Failed() {
				return errJobsFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.sessions, "sessions", "", "Sessions directory (overrides config)")
	cmd.Flags().StringVar(&flags.video, "video", "", "Video directory (overrides config)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output directory (overrides config)")
	cmd.Flags().StringVar(&flags.ffmpegPath, "ffmpeg-path", "", "ffmpeg binary (overrides config)")
	cmd.Flags().IntVarP(&flags.workers, "workers", "j", -1, "Concurrent encoder processes (0 = one per CPU)")
	cmd.Flags().BoolVar(&flags.noVideo, "no-video", false, "Slice audio tracks only")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "Do not print per-take progress")
	return cmd
}

func applySliceFlags(cfg *config.Config, flags sliceFlags, args []string) error {
	if len(args) > 0 {
		if err := cfg.ApplyProject(args[0]); err != nil {
			return services.Wrap(services.ErrConfiguration, "flags", "project", args[0], err)
		}
	}
	overrides := []struct {
		value  string
		target *string
	}{
		{flags.sessions, &cfg.Paths.SessionsDir},
		{flags.video, &cfg.Paths.VideoDir},
		{flags.output, &cfg.Paths.OutputDir},
		{flags.ffmpegPath, &cfg.Encoder.FFmpegBinary},
	}
	for _, o := range overrides {
		value := strings.TrimSpace(o.value)
		if value == "" {
			continue
		}
		if strings.ContainsRune(value, filepath.Separator) || strings.HasPrefix(value, "~") {
			expanded, err := config.ExpandPath(value)
			if err != nil {
				return services.Wrap(services.ErrConfiguration, "flags", "expand path", value, err)
			}
			value = expanded
		}
		*o.target = value
	}
	if flags.workers >= 0 {
		cfg.Encoder.Workers = flags.workers
	}
	if err := cfg.Validate(); err != nil {
		return services.Wrap(services.ErrConfiguration, "flags", "validate", "", err)
	}
	return nil
}

func progressPrinter(out io.Writer) func(slicer.JobResult) {
	var mu sync.Mutex
	return func(res slicer.JobResult) {
		mu.Lock()
		defer mu.Unlock()
		line := fmt.Sprintf("%-9s %s", stateLabel(res.State), filepath.Base(res.Job.Output))
		if res.Err != nil {
			line += ": " + firstLine(res.Err.Error())
		}
		fmt.Fprintln(out, line)
	}
}

func printSummary(out io.Writer, summary pipeline.Summary) {
	if len(summary.Issues) > 0 {
		rows := make([][]string, 0, len(summary.Issues))
		for _, issue := range summary.Issues {
			rows = append(rows, []string{issue.SessionID, issue.Stage, firstLine(issue.Err.Error())})
		}
		fmt.Fprintln(out, renderTable([]string{"Session", "Stage", "Problem"}, rows, nil))
	}

	var failed [][]string
	for _, res := range summary.Report.Results {
		if res.State == slicer.JobFailed {
			msg := ""
			if res.Err != nil {
				msg = firstLine(res.Err.Error())
			}
			failed = append(failed, []string{filepath.Base(res.Job.Output), msg})
		}
	}
	if len(failed) > 0 {
		fmt.Fprintln(out, renderTable([]string{"Failed output", "Error"}, failed, nil))
	}

	rows := [][]string{
		{stateLabel(slicer.JobSucceeded), fmt.Sprint(summary.Report.Succeeded)},
		{stateLabel(slicer.JobSkipped), fmt.Sprint(summary.Report.Skipped)},
		{stateLabel(slicer.JobFailed), fmt.Sprint(summary.Report.Failed)},
	}
	fmt.Fprintln(out, renderTable([]string{"Takes", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
	fmt.Fprintf(out, "%s in %s\n", summary.Describe(), summary.Report.Elapsed.Round(time.Millisecond))
	if summary.RunID != "" {
		fmt.Fprintf(out, "Run ID: %s\n", summary.RunID)
	}
}
