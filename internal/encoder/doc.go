// Package encoder drives the external ffmpeg binary that cuts one time range
// out of one track file.
//
// Each Extract call spawns exactly one process and waits for it. Output is
// written to a hidden ".partial-" sibling and renamed into place only after a
// zero exit status, so a failed or interrupted job never leaves a file that a
// later run would mistake for finished work. Non-zero exits and spawn failures
// are reported as *EncodeError with the tail of ffmpeg's stderr attached.
package encoder
