package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEncoder(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// ValidateRun checks the settings a slicing run needs beyond Validate.
func (c *Config) ValidateRun() error {
	if c.Paths.SessionsDir == "" {
		return errors.New("paths.sessions_dir must be set (pass a project directory or --sessions)")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set (pass a project directory or --output)")
	}
	return nil
}

func (c *Config) validateEncoder() error {
	if c.Encoder.Workers < 0 {
		return errors.New("encoder.workers must be >= 0")
	}
	if c.Encoder.ThreadsPerJob < 1 {
		return errors.New("encoder.threads_per_job must be positive")
	}
	return nil
}

func (c *Config) validateSync() error {
	switch c.Sync.Strategy {
	case StrategyInteractive, StrategyCorrelation:
	default:
		return fmt.Errorf("sync.strategy: unsupported value %q (want %q or %q)", c.Sync.Strategy, StrategyInteractive, StrategyCorrelation)
	}
	if strings.ContainsRune(c.Sync.CacheFile, filepath.Separator) && !filepath.IsAbs(c.Sync.CacheFile) {
		return errors.New("sync.cache_file must be a file name or an absolute path")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
