package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"takeslice/internal/config"
	"takeslice/internal/offsetcache"
	"takeslice/internal/services"
)

func newOffsetsCommand(ctx *commandContext) *cobra.Command {
	var videoDir string
	var project string

	offsetsCmd := &cobra.Command{
		Use:   "offsets",
		Short: "Inspect and maintain the video offset cache",
	}
	offsetsCmd.PersistentFlags().StringVar(&videoDir, "video", "", "Video directory holding the cache (overrides config)")
	offsetsCmd.PersistentFlags().StringVarP(&project, "project", "p", "", "Project directory (video defaults to <project>/video)")

	load := func(cmd *cobra.Command) (*offsetcache.Cache, error) {
		cfg, err := ctx.runConfig()
		if err != nil {
			return nil, err
		}
		if dir := strings.TrimSpace(videoDir); dir != "" {
			expanded, err := config.ExpandPath(dir)
			if err != nil {
				return nil, services.Wrap(services.ErrConfiguration, "offsets", "video directory", dir, err)
			}
			cfg.Paths.VideoDir = expanded
		}
		if err := cfg.ApplyProject(project); err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "offsets", "project", project, err)
		}
		if cfg.Paths.VideoDir == "" && !filepath.IsAbs(cfg.Sync.CacheFile) {
			return nil, services.Wrap(services.ErrConfiguration, "offsets", "", "no video directory configured; pass --video or --project", nil)
		}
		logger, err := ctx.logger(cmd, cfg)
		if err != nil {
			return nil, err
		}
		return offsetcache.Load(cfg.OffsetCachePath(), logger)
	}

	offsetsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List cached offsets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := load(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			entries := cache.List()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No cached offsets in %s\n", cache.Path())
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{entry.Name, entry.Offset.String()})
			}
			fmt.Fprintln(out, renderTable([]string{"Video", "Offset"}, rows, []columnAlignment{alignLeft, alignRight}))
			fmt.Fprintf(out, "%d cached offsets in %s\n", len(entries), cache.Path())
			return nil
		},
	})

	offsetsCmd.AddCommand(&cobra.Command{
		Use:   "remove <name>...",
		Short: "Forget cached offsets so they are asked for again",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := load(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			var missing []string
			for _, name := range args {
				if err := cache.Remove(name); err != nil {
					if errors.Is(err, offsetcache.ErrNotFound) {
						missing = append(missing, name)
						continue
					}
					return err
				}
				fmt.Fprintf(out, "Removed %s\n", offsetcache.Key(name))
			}
			if cache.Dirty() {
				if err := cache.Save(); err != nil {
					return fmt.Errorf("save offset cache: %w", err)
				}
			}
			if len(missing) > 0 {
				return services.Wrap(services.ErrNotFound, "offsets", "remove", "not cached: "+strings.Join(missing, ", "), nil)
			}
			return nil
		},
	})

	offsetsCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached offset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := load(cmd)
			unusable := errors.Is(err, offsetcache.ErrUnusable)
			if err != nil && !unusable {
				return err
			}
			count := cache.Len()
			cache.Clear()
			// An unreadable file is replaced with an empty cache.
			if cache.Dirty() || unusable {
				if err := cache.Save(); err != nil {
					return fmt.Errorf("save offset cache: %w", err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached offsets\n", count)
			return nil
		},
	})

	return offsetsCmd
}
