// Package timestamp implements the millisecond-resolution time value used for
// take boundaries and track synchronization offsets.
//
// A Timestamp is never negative and always renders in the canonical
// HH:MM:SS.mmm form. Parse and String are exact inverses for every canonical
// string, which lets the offset cache, session metadata and encoder argument
// lists share one textual representation.
//
// Subtracting a later timestamp from an earlier one is an error rather than a
// silent clamp; callers that need a take duration validate ordering first.
package timestamp
