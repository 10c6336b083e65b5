// Package deps checks for the external binaries takeslice shells out to
// (ffmpeg and ffprobe) and reports their availability and version.
package deps
