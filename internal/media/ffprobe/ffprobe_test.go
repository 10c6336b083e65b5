package ffprobe

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeStub(t *testing.T, body string) string {
	t.Helper()
	stub := filepath.Join(t.TempDir(), "ffprobe")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return stub
}

func TestResultDuration(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   time.Duration
	}{
		{"container", Result{Format: Format{Duration: "123.4567"}}, 123457 * time.Millisecond},
		{"stream fallback", Result{
			Format:  Format{Duration: "N/A"},
			Streams: []Stream{{Duration: "10.5"}, {Duration: "12.25"}},
		}, 12250 * time.Millisecond},
		{"unknown", Result{Format: Format{Duration: "bad"}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.Duration(); got != tt.want {
				t.Fatalf("Duration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStreamCounts(t *testing.T) {
	result := Result{Streams: []Stream{{CodecType: "video"}, {CodecType: "audio"}, {CodecType: "AUDIO"}}}
	if result.StreamCount("audio") != 2 || result.StreamCount("video") != 1 {
		t.Fatalf("unexpected counts in %+v", result.Streams)
	}
	if !result.HasMedia() {
		t.Fatal("expected media")
	}
	if (Result{Streams: []Stream{{CodecType: "data"}}}).HasMedia() {
		t.Fatal("data-only file reported as media")
	}
}

func TestInspectParsesStubOutput(t *testing.T) {
	stub := writeStub(t, "cat <<'JSON'\n{\"streams\":[{\"index\":0,\"codec_type\":\"video\",\"codec_name\":\"h264\"}],\"format\":{\"duration\":\"61.500\"}}\nJSON\n")

	result, err := Inspect(context.Background(), stub, "/videos/take.mp4")
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if result.StreamCount("video") != 1 || result.Streams[0].CodecName != "h264" {
		t.Fatalf("unexpected streams %+v", result.Streams)
	}
	if result.Duration() != 61500*time.Millisecond {
		t.Fatalf("unexpected duration %v", result.Duration())
	}
}

func TestInspectReportsFailure(t *testing.T) {
	stub := writeStub(t, "echo 'Invalid data found' >&2\nexit 1\n")
	_, err := Inspect(context.Background(), stub, "/videos/broken.mp4")
	if err == nil || !strings.Contains(err.Error(), "Invalid data found") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
	if _, err := Inspect(context.Background(), stub, "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
