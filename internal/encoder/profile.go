package encoder

import "strings"

type profile func(videoCodec string) []string

// Containers whose video stream is re-encoded so cuts land on the requested
// frame. Everything else is stream-copied.
var profiles = map[string]profile{
	".mp4": func(videoCodec string) []string {
		return []string{"-c:a", "copy", "-c:v", videoCodec}
	},
}

func copyProfile(string) []string {
	return []string{"-c", "copy"}
}

func profileArgs(ext, videoCodec string) []string {
	if p, ok := profiles[strings.ToLower(ext)]; ok {
		return p(videoCodec)
	}
	return copyProfile(videoCodec)
}
