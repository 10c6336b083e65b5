// Package synchronizer resolves the offset that aligns a track file with its
// session's timeline.
//
// Strategies implement the Synchronizer interface:
//   - Interactive asks an operator and re-prompts until the answer parses.
//   - CacheBacked serves offsets from the persisted offset cache and only
//     delegates to a fallback strategy on a miss.
//   - ContentCorrelation is the audio cross-correlation extension point and
//     currently always fails.
//
// Every strategy runs in the single-threaded synchronization phase before any
// encoder job starts. Failures are reported as *SyncError.
package synchronizer
