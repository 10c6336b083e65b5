package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"takeslice/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted at a fresh project directory with
// sessions, video, takes, and logs subdirectories. Sessions and video
// directories are created; the output directory is left for the run to create.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfgVal.ApplyProject(filepath.Join(base, "project")); err != nil {
		t.Fatalf("apply project: %v", err)
	}
	for _, dir := range []string{cfgVal.Paths.SessionsDir, cfgVal.Paths.VideoDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	cfgVal.Sync.Probe = false
	cfgVal.Encoder.Workers = 2

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithoutLedger disables run history.
func WithoutLedger() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ledger.Enabled = false
	}
}

// WithStubbedFFmpeg writes an ffmpeg stub that copies nothing but creates its
// output file (the last argument), and points the config at it.
func WithStubbedFFmpeg() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Encoder.FFmpegBinary = WriteScript(b.t, filepath.Join(b.baseDir, "bin"), "ffmpeg",
			"for last; do :; done\necho clip > \"$last\"\n")
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg and ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "path-bin")
		for _, name := range names {
			WriteScript(b.t, binDir, name, "exit 0\n")
		}
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
