package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"takeslice/internal/config"
	"takeslice/internal/logging"
	"takeslice/internal/services"
)

func TestConsoleLoggerFormatsComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "slicer").Info("job finished", logging.String("output", "chunk 3.wav"), logging.Int("track", 1))
	logger.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "INFO  slicer: job finished") {
		t.Fatalf("missing component prefix in %q", out)
	}
	if !strings.Contains(out, `output="chunk 3.wav"`) || !strings.Contains(out, "track=1") {
		t.Fatalf("missing fields in %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug record should be filtered at info level: %q", out)
	}
	if strings.Contains(out, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", out)
	}
}

func TestJSONLoggerWritesStructuredRecords(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("cache unusable", logging.String("path", "/tmp/x"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode json record %q: %v", buf.String(), err)
	}
	if record["level"] != "warn" || record["msg"] != "cache unusable" || record["path"] != "/tmp/x" {
		t.Fatalf("unexpected record %+v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key in %+v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigTeesToRotatingFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Level = "error"

	logger, err := logging.NewFromConfig(&cfg, io.Discard)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Debug("file only", logging.String(logging.FieldSessionID, "s1"))

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"file only"`) || !strings.Contains(string(data), `"session_id":"s1"`) {
		t.Fatalf("expected debug record in log file, got %q", data)
	}
}

func TestWithContextAddsRunFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithRunID(context.Background(), "run-7")
	ctx = services.WithSessionID(ctx, "42")

	logging.WithContext(ctx, logger).Info("synced")
	out := buf.String()
	if !strings.Contains(out, "run_id=run-7") || !strings.Contains(out, "[42]: synced") {
		t.Fatalf("expected context fields in %q", out)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "skipped", "session_skipped", logging.String(logging.FieldImpact, "session not sliced"))

	out := buf.String()
	for _, fragment := range []string{"event_type=session_skipped", "\n    hint: check logs for details\n", `impact="session not sliced"`} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in %q", fragment, out)
		}
	}
	if strings.Count(out, "impact=") != 1 {
		t.Fatalf("impact should not be duplicated: %q", out)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 8) {
		t.Fatal("nop logger should not be enabled")
	}
	logging.NewComponentLogger(nil, "x").Error("ignored")
}
