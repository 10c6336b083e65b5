package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// showEntries limits ffprobe output to the fields Result decodes.
const showEntries = "format=duration,format_name:stream=index,codec_type,codec_name,duration"

// Result is the subset of ffprobe JSON output takeslice uses.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream is one elementary stream.
type Stream struct {
	Index     int    `json:"index"`
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
	Duration  string `json:"duration"`
}

// Format is container-level metadata.
type Format struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
}

// Inspect runs ffprobe on path and decodes its JSON report. Stderr from a
// failed probe is included in the error.
func Inspect(ctx context.Context, binary, path string) (Result, error) {
	if binary = strings.TrimSpace(binary); binary == "" {
		binary = "ffprobe"
	}
	if strings.TrimSpace(path) == "" {
		return Result{}, errors.New("ffprobe: empty path")
	}

	args := []string{"-v", "error", "-hide_banner", "-show_entries", showEntries, "-of", "json", "--", path}
	output, err := exec.CommandContext(ctx, binary, args...).Output() //nolint:gosec
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return Result{}, fmt.Errorf("ffprobe %s: %w: %s", path, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Result{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe %s: decode: %w", path, err)
	}
	return result, nil
}

// StreamCount returns the number of streams of the given codec type
// ("audio", "video", ...), ignoring case.
func (r Result) StreamCount(codecType string) int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, codecType) {
			count++
		}
	}
	return count
}

// HasMedia reports whether the file has at least one audio or video stream.
func (r Result) HasMedia() bool {
	return r.StreamCount("audio")+r.StreamCount("video") > 0
}

// Duration returns the container duration rounded to milliseconds. When the
// container does not report one, the longest stream duration is used. Zero
// means unknown.
func (r Result) Duration() time.Duration {
	seconds := parseSeconds(r.Format.Duration)
	if seconds <= 0 {
		for _, stream := range r.Streams {
			seconds = max(seconds, parseSeconds(stream.Duration))
		}
	}
	if seconds <= 0 {
		return 0
	}
	return time.Duration(math.Round(seconds*1000)) * time.Millisecond
}

// parseSeconds returns 0 for empty, "N/A" or malformed values.
func parseSeconds(value string) float64 {
	seconds, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0
	}
	return seconds
}
