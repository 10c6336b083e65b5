// Package slicer turns registered sessions into per-take media clips.
//
// A Builder collects sessions and their tracks under exclusive access. Build
// freezes that state into an immutable Slicer whose PerformSlicing plans one
// job per (take, track) pair and runs the jobs on a bounded worker pool.
// Existing outputs are skipped, so re-running against the same output
// directory only redoes work that previously failed. When two sessions map to
// the same output name the first claims it and the rest fail with
// ErrOutputConflict. A failed job is recorded in the Report and never stops its
// siblings.
package slicer
