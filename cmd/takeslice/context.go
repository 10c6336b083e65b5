package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"takeslice/internal/config"
	"takeslice/internal/logging"
	"takeslice/internal/services"
)

// errJobsFailed marks a run that completed with failed jobs or sessions. The
// run summary has already been printed.
var errJobsFailed = errors.New("one or more takes failed")

type commandContext struct {
	configFlag    *string
	verbosityFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, verbosityFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		verbosityFlag: verbosityFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "load", path, err)
			return
		}
		if level := c.verbosity(); level != "" {
			cfg.Logging.Level = level
			if err := cfg.Validate(); err != nil {
				c.configErr = services.Wrap(services.ErrConfiguration, "config", "verbosity", "", err)
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "ensure directories", "", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// runConfig returns a copy of the loaded configuration that a command may
// adjust with its own flags.
func (c *commandContext) runConfig() (*config.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	clone := *cfg
	return &clone, nil
}

func (c *commandContext) verbosity() string {
	if c.verbosityFlag == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*c.verbosityFlag))
}

func (c *commandContext) logger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.NewFromConfig(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func exitCode(err error) int {
	if errors.Is(err, errJobsFailed) {
		return services.ExitFailure
	}
	return services.ExitCode(err)
}
