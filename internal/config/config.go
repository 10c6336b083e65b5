package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the project layout.
type Paths struct {
	ProjectDir  string `toml:"project_dir"`
	SessionsDir string `toml:"sessions_dir"`
	VideoDir    string `toml:"video_dir"`
	OutputDir   string `toml:"output_dir"`
	LogDir      string `toml:"log_dir"`
}

// Encoder contains external encoder settings.
type Encoder struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	// Workers bounds concurrent encoder processes. Zero means one per CPU.
	Workers       int    `toml:"workers"`
	ThreadsPerJob int    `toml:"threads_per_job"`
	VideoCodec    string `toml:"video_codec"`
}

// Sync contains track synchronization settings.
type Sync struct {
	// Strategy is "interactive" or "correlation".
	Strategy string `toml:"strategy"`
	// CacheFile is resolved relative to the video directory.
	CacheFile     string `toml:"cache_file"`
	Probe         bool   `toml:"probe"`
	ConfirmCached bool   `toml:"confirm_cached"`
}

// Ledger contains run history settings.
type Ledger struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for takeslice.
//
// Configuration sections by subsystem:
//   - Paths: project, sessions, video, output, and log directories
//   - Encoder: ffmpeg/ffprobe binaries and worker pool sizing
//   - Sync: synchronization strategy and offset cache location
//   - Ledger: SQLite run history
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Encoder Encoder `toml:"encoder"`
	Sync    Sync    `toml:"sync"`
	Ledger  Ledger  `toml:"ledger"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/takeslice/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("takeslice.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

// ApplyProject fills unset sessions/video/output directories from a project
// root laid out as <project>/sessions, <project>/video and <project>/takes.
// Explicitly configured directories win; directories derived from a
// previously applied project are replaced.
func (c *Config) ApplyProject(project string) error {
	project = strings.TrimSpace(project)
	if project == "" {
		return nil
	}
	root, err := expandPath(project)
	if err != nil {
		return fmt.Errorf("project: %w", err)
	}
	if prev := c.Paths.ProjectDir; prev != "" && prev != root {
		for _, field := range []struct {
			dir *string
			sub string
		}{
			{&c.Paths.SessionsDir, defaultSessionsSubdir},
			{&c.Paths.VideoDir, defaultVideoSubdir},
			{&c.Paths.OutputDir, defaultOutputSubdir},
		} {
			if *field.dir == filepath.Join(prev, field.sub) {
				*field.dir = ""
			}
		}
	}
	c.Paths.ProjectDir = root
	if c.Paths.SessionsDir == "" {
		c.Paths.SessionsDir = filepath.Join(root, defaultSessionsSubdir)
	}
	if c.Paths.VideoDir == "" {
		c.Paths.VideoDir = filepath.Join(root, defaultVideoSubdir)
	}
	if c.Paths.OutputDir == "" {
		c.Paths.OutputDir = filepath.Join(root, defaultOutputSubdir)
	}
	return nil
}

// OffsetCachePath returns the offset cache location inside the video directory.
func (c *Config) OffsetCachePath() string {
	if filepath.IsAbs(c.Sync.CacheFile) {
		return c.Sync.CacheFile
	}
	return filepath.Join(c.Paths.VideoDir, c.Sync.CacheFile)
}

// LedgerPath returns the ledger database location.
func (c *Config) LedgerPath() string {
	if c.Ledger.Path != "" {
		return c.Ledger.Path
	}
	return filepath.Join(c.Paths.LogDir, "ledger.db")
}

// EnsureDirectories creates the directories takeslice writes to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
