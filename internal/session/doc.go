// Package session models recording sessions, their tracks and their takes.
//
// A session directory holds the audio master (audio.wav), a metadata record
// (metadata.json) carrying the session's authored sync offset, and an ordered
// take list (takes.csv). ReadDir turns a directory into a Raw record without
// interpreting it; FromRaw validates the record and produces the immutable
// Session and Take values the slicer registers. Keeping the two steps apart
// lets tests build Raw values in memory and lets the slicer reject a session
// without any partially registered state.
package session
