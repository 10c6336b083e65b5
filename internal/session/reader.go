package session

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var takeColumns = []string{"header", "chunk_index", "chunk_text", "take_index", "take_mark", "take_start", "take_end"}

// ReadDir loads the raw records of the session stored in dir. The session ID
// is the directory's base name.
func ReadDir(dir string) (Raw, error) {
	id := filepath.Base(filepath.Clean(dir))
	raw := Raw{ID: id, AudioPath: filepath.Join(dir, AudioFile)}

	if _, err := os.Stat(raw.AudioPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Raw{}, loadErr(id, AudioFile, ErrMissingSource)
		}
		return Raw{}, loadErr(id, AudioFile, err)
	}

	meta, err := readMeta(filepath.Join(dir, MetadataFile))
	if err != nil {
		return Raw{}, loadErr(id, MetadataFile, err)
	}
	raw.Meta = meta

	takes, err := readTakes(filepath.Join(dir, TakesFile))
	if err != nil {
		return Raw{}, loadErr(id, TakesFile, err)
	}
	raw.Takes = takes
	return raw, nil
}

func readMeta(path string) (*RawMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrMissingSource
		}
		return nil, err
	}
	var meta RawMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if strings.TrimSpace(meta.SyncOffset) == "" {
		return nil, errors.New("SyncOffset: missing")
	}
	return &meta, nil
}

func readTakes(path string) ([]RawTake, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrMissingSource
		}
		return nil, err
	}
	defer file.Close()
	return parseTakes(file)
}

func parseTakes(r io.Reader) ([]RawTake, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty take list: header row missing")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range takeColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("header: column %q missing", col)
		}
	}

	takes := make([]RawTake, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		field := func(name string) string { return record[index[name]] }
		takes = append(takes, RawTake{
			Header:     field("header"),
			ChunkIndex: field("chunk_index"),
			ChunkText:  field("chunk_text"),
			TakeIndex:  field("take_index"),
			TakeMark:   field("take_mark"),
			TakeStart:  field("take_start"),
			TakeEnd:    field("take_end"),
		})
	}
	return takes, nil
}

// Discover lists the session directories under root in name order. Hidden
// entries and plain files are ignored.
func Discover(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read sessions directory: %w", err)
	}
	dirs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		dirs = append(dirs, filepath.Join(root, entry.Name()))
	}
	sort.Strings(dirs)
	return dirs, nil
}
