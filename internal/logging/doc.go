// Package logging assembles structured slog loggers and formatting helpers used
// across takeslice.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with run IDs, session IDs, and stages. File output is written through
// a size-rotated sink. The package also provides a no-op logger for tests.
package logging
