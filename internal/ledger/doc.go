// Package ledger records slicing runs and their per-job outcomes in SQLite.
//
// Each run gets a UUID, a row in runs, and one row per planned job in jobs.
// The history command reads it back. The ledger is an audit trail only;
// skip-if-exists on the output directory stays the source of truth for which
// clips still need work.
package ledger
