// Package pipeline runs one complete slicing pass over a project.
//
// Run takes an exclusive lock on the output directory, registers every
// session found in the sessions directory, resolves video offsets through the
// configured synchronizer (cache first, operator second), saves the offset
// cache when it changed, and finally slices all takes on the worker pool. A
// session that fails to load or synchronize is reported and skipped; only
// setup failures, a busy lock, and an unsavable offset cache abort the run.
// When enabled, the run and every job outcome are written to the ledger.
package pipeline
