package session

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCSV = `header,chunk_index,chunk_text,take_index,take_mark,take_start,take_end
Intro,3,"Hello, world",0,A,00:00:10.000,00:00:12.500
Intro,3,"Hello, world",1,B,00:00:14.000,00:00:16.000
`

func writeSession(t *testing.T, root, id string, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(root, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func completeSession() map[string]string {
	return map[string]string{
		AudioFile:    "RIFF",
		MetadataFile: `{"SyncOffset": "00:00:01.500"}`,
		TakesFile:    sampleCSV,
	}
}

func TestReadDirLoadsRecords(t *testing.T) {
	dir := writeSession(t, t.TempDir(), "session-42", completeSession())

	raw, err := ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir returned error: %v", err)
	}
	if raw.ID != "session-42" {
		t.Fatalf("unexpected id %q", raw.ID)
	}
	if raw.AudioPath != filepath.Join(dir, AudioFile) {
		t.Fatalf("unexpected audio path %q", raw.AudioPath)
	}
	if raw.Meta == nil || raw.Meta.SyncOffset != "00:00:01.500" {
		t.Fatalf("unexpected meta %+v", raw.Meta)
	}
	if len(raw.Takes) != 2 {
		t.Fatalf("expected 2 takes, got %d", len(raw.Takes))
	}
	if raw.Takes[0].ChunkText != "Hello, world" || raw.Takes[1].TakeMark != "B" {
		t.Fatalf("unexpected takes %+v", raw.Takes)
	}

	sess, takes, err := FromRaw(raw)
	if err != nil {
		t.Fatalf("FromRaw returned error: %v", err)
	}
	if sess.Tracks[0].SyncOffset.String() != "00:00:01.500" || len(takes) != 2 {
		t.Fatalf("unexpected session %+v takes %d", sess, len(takes))
	}
}

func TestReadDirColumnOrderIndependent(t *testing.T) {
	files := completeSession()
	files[TakesFile] = "take_end,take_start,take_mark,take_index,chunk_text,chunk_index,header\n00:00:02.000,00:00:01.000,Z,0,text,9,h\n"
	dir := writeSession(t, t.TempDir(), "s", files)

	raw, err := ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir returned error: %v", err)
	}
	if raw.Takes[0].ChunkIndex != "9" || raw.Takes[0].TakeStart != "00:00:01.000" || raw.Takes[0].TakeMark != "Z" {
		t.Fatalf("unexpected take %+v", raw.Takes[0])
	}
}

func TestReadDirMissingSources(t *testing.T) {
	for _, missing := range []string{AudioFile, MetadataFile, TakesFile} {
		t.Run(missing, func(t *testing.T) {
			files := completeSession()
			delete(files, missing)
			dir := writeSession(t, t.TempDir(), "s", files)

			_, err := ReadDir(dir)
			var loadErr *LoadError
			if !errors.As(err, &loadErr) {
				t.Fatalf("expected LoadError, got %v", err)
			}
			if loadErr.Source != missing {
				t.Fatalf("expected source %q, got %q", missing, loadErr.Source)
			}
			if !errors.Is(err, ErrMissingSource) {
				t.Fatalf("expected ErrMissingSource, got %v", err)
			}
		})
	}
}

func TestReadDirMalformedSources(t *testing.T) {
	cases := map[string]map[string]string{
		"bad json":        {MetadataFile: "{"},
		"missing offset":  {MetadataFile: `{"Other": 1}`},
		"missing column":  {TakesFile: "header,chunk_index\nx,1\n"},
		"ragged row":      {TakesFile: sampleCSV + "only,two\n"},
		"empty csv":       {TakesFile: ""},
	}
	for name, override := range cases {
		t.Run(name, func(t *testing.T) {
			files := completeSession()
			for k, v := range override {
				files[k] = v
			}
			dir := writeSession(t, t.TempDir(), "s", files)
			_, err := ReadDir(dir)
			var loadErr *LoadError
			if !errors.As(err, &loadErr) {
				t.Fatalf("expected LoadError, got %v", err)
			}
		})
	}
}

func TestParseTakesHeaderOnly(t *testing.T) {
	takes, err := parseTakes(strings.NewReader("header,chunk_index,chunk_text,take_index,take_mark,take_start,take_end\n"))
	if err != nil {
		t.Fatalf("parseTakes returned error: %v", err)
	}
	if takes == nil || len(takes) != 0 {
		t.Fatalf("expected empty non-nil take list, got %#v", takes)
	}
}

func TestDiscoverListsSessionDirectories(t *testing.T) {
	root := t.TempDir()
	writeSession(t, root, "b-session", nil)
	writeSession(t, root, "a-session", nil)
	writeSession(t, root, ".hidden", nil)
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	dirs, err := Discover(root)
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(dirs) != 2 {
		t.Fatalf("expected 2 dirs, got %v", dirs)
	}
	if filepath.Base(dirs[0]) != "a-session" || filepath.Base(dirs[1]) != "b-session" {
		t.Fatalf("unexpected order: %v", dirs)
	}
}

func TestDiscoverMissingRoot(t *testing.T) {
	if _, err := Discover(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing root")
	}
}
