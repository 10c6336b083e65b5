// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect runs ffprobe against a media file and returns the parsed streams and
// container format. Helper methods on Result expose stream counts and the
// container duration, which the interactive synchronizer shows the operator
// before asking for an offset.
package ffprobe
