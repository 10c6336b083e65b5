package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMatchVideo(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"video-session-42.mp4", "42.txt", "session-7.MOV", "cam_S1.mkv", "S1.mp4", ".S2.mp4", "other-420.mp4"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("v"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	cases := []struct {
		id   string
		want string
		ok   bool
	}{
		{"42", "video-session-42.mp4", true},
		{"7", "session-7.MOV", true},
		{"S1", "S1.mp4", true},
		{"S2", "", false},
		{"99", "", false},
	}
	for _, tc := range cases {
		got, ok, err := MatchVideo(dir, tc.id)
		if err != nil {
			t.Fatalf("MatchVideo(%q): %v", tc.id, err)
		}
		if ok != tc.ok {
			t.Fatalf("MatchVideo(%q) ok = %v, want %v", tc.id, ok, tc.ok)
		}
		if tc.ok && got != filepath.Join(dir, tc.want) {
			t.Fatalf("MatchVideo(%q) = %q, want %q", tc.id, got, tc.want)
		}
	}
}

func TestMatchVideoMissingDir(t *testing.T) {
	_, ok, err := MatchVideo(filepath.Join(t.TempDir(), "nope"), "1")
	if err != nil || ok {
		t.Fatalf("expected no match and no error, got %v %v", ok, err)
	}
}
