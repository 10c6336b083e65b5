package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"takeslice/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed || result.Detail == "" {
		t.Fatalf("expected failure with detail for missing dir, got %+v", result)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckOutputDirectoryMissingButCreatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "takes")
	result := CheckOutputDirectory("out", path)
	if !result.Passed || !strings.Contains(result.Detail, "will be created") {
		t.Fatalf("expected creatable output dir, got %+v", result)
	}
}

func TestRunAllReportsMissingFFmpeg(t *testing.T) {
	base := t.TempDir()
	stub := filepath.Join(base, "ffmpeg")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Paths.SessionsDir = base
	cfg.Paths.OutputDir = filepath.Join(base, "takes")
	cfg.Encoder.FFmpegBinary = stub
	cfg.Encoder.FFprobeBinary = "definitely-missing-ffprobe"
	cfg.Sync.Probe = false

	results := RunAll(&cfg, false)
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("expected all checks to pass, got %s", Summary(results))
	}

	cfg.Encoder.FFmpegBinary = "definitely-missing-ffmpeg"
	cfg.Sync.Probe = true
	results = RunAll(&cfg, false)
	summary := Summary(results)
	if !strings.Contains(summary, "FFmpeg") || !strings.Contains(summary, "FFprobe") {
		t.Fatalf("expected ffmpeg and ffprobe failures, got %q", summary)
	}
}
