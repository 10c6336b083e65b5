// Package services defines shared utilities consumed by the slicing pipeline
// and its external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, session IDs, and stage names for
//     logging and the run ledger.
//   - Structured error markers plus the Wrap helper that classify failures
//     into ledger outcomes and process exit codes.
//
// Use these helpers when wiring new pipeline stages so error handling and
// observability stay uniform.
package services
