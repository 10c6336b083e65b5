// Package preflight provides readiness checks for the binaries and
// directories a slicing run depends on.
//
// The slice command runs RunAll before touching any session so a missing
// ffmpeg or an unwritable output directory fails fast. The check command
// prints the same results as a table.
package preflight
