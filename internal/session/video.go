package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// VideoExtensions lists the container extensions MatchVideo considers.
var VideoExtensions = []string{".mp4", ".mov", ".mkv", ".m4v"}

// MatchVideo finds the video file for a session inside dir. A file matches
// when its stem equals the session ID or ends with "-<id>" or "_<id>". When
// several files match, the shortest name wins so "S1.mp4" beats "cam-S1.mp4".
// A missing dir reports no match.
func MatchVideo(dir, id string) (string, bool, error) {
	if strings.TrimSpace(dir) == "" || strings.TrimSpace(id) == "" {
		return "", false, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("list video directory: %w", err)
	}

	var matches []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if !isVideoExt(ext) {
			continue
		}
		stem := strings.TrimSuffix(name, ext)
		if stem == id || strings.HasSuffix(stem, "-"+id) || strings.HasSuffix(stem, "_"+id) {
			matches = append(matches, name)
		}
	}
	if len(matches) == 0 {
		return "", false, nil
	}
	sort.Slice(matches, func(i, j int) bool {
		if len(matches[i]) != len(matches[j]) {
			return len(matches[i]) < len(matches[j])
		}
		return matches[i] < matches[j]
	})
	return filepath.Join(dir, matches[0]), true, nil
}

func isVideoExt(ext string) bool {
	for _, candidate := range VideoExtensions {
		if strings.EqualFold(ext, candidate) {
			return true
		}
	}
	return false
}
