// Package offsetcache persists resolved track synchronization offsets keyed
// by track file base name.
//
// The cache is a flat JSON object mapping base names to HH:MM:SS.mmm offsets,
// stored next to the video files. It is loaded once at the start of a run,
// mutated only by the single-threaded synchronization phase, and saved at most
// once when something changed. A missing file is an empty cache; a corrupt file
// degrades to an empty cache and the caller is told so.
package offsetcache
