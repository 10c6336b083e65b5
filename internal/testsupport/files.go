package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"takeslice/internal/session"
)

// TakeRow is one takes.csv row for WriteSession.
type TakeRow struct {
	Chunk string
	Mark  string
	Start string
	End   string
}

// WriteSession creates a session directory under root with audio.wav,
// metadata.json and takes.csv, returning the directory path.
func WriteSession(t testing.TB, root, id, offset string, takes ...TakeRow) string {
	t.Helper()

	dir := filepath.Join(root, id)
	WriteFile(t, filepath.Join(dir, session.AudioFile), "RIFF")

	meta, err := json.Marshal(session.RawMeta{SyncOffset: offset})
	if err != nil {
		t.Fatalf("marshal metadata: %v", err)
	}
	WriteFile(t, filepath.Join(dir, session.MetadataFile), string(meta))

	var csv strings.Builder
	csv.WriteString("header,chunk_index,chunk_text,take_index,take_mark,take_start,take_end\n")
	for i, row := range takes {
		csv.WriteString(strings.Join([]string{
			"take", row.Chunk, "text", strconv.Itoa(i), row.Mark, row.Start, row.End,
		}, ","))
		csv.WriteByte('\n')
	}
	WriteFile(t, filepath.Join(dir, session.TakesFile), csv.String())
	return dir
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteScript writes an executable /bin/sh script named name into dir and
// returns its path.
func WriteScript(t testing.TB, dir, name, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script %s: %v", name, err)
	}
	return path
}
