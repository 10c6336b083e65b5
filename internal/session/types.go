package session

import (
	"path/filepath"
	"strings"

	"takeslice/internal/timestamp"
)

const (
	AudioFile    = "audio.wav"
	TakesFile    = "takes.csv"
	MetadataFile = "metadata.json"
)

// Track is one media file aligned to the session timeline by SyncOffset.
type Track struct {
	File       string
	SyncOffset timestamp.Timestamp
}

// Ext returns the file extension without the leading dot.
func (t Track) Ext() string {
	return strings.TrimPrefix(filepath.Ext(t.File), ".")
}

// Session is a recording session and its ordered tracks. Track 0 is the audio master.
type Session struct {
	ID     string
	Tracks []Track
}

// Clone returns a deep copy.
func (s Session) Clone() Session {
	out := Session{ID: s.ID}
	if len(s.Tracks) > 0 {
		out.Tracks = append([]Track(nil), s.Tracks...)
	}
	return out
}

// Take is a marked range on a session timeline.
type Take struct {
	SessionID string
	ChunkID   string
	Start     timestamp.Timestamp
	End       timestamp.Timestamp
	Mark      string
}

// Raw is the unvalidated content of a session source.
type Raw struct {
	ID        string
	AudioPath string
	Meta      *RawMeta
	Takes     []RawTake
}

// RawMeta mirrors metadata.json.
type RawMeta struct {
	SyncOffset string `json:"SyncOffset"`
}

// RawTake mirrors one takes.csv row.
type RawTake struct {
	Header     string
	ChunkIndex string
	ChunkText  string
	TakeIndex  string
	TakeMark   string
	TakeStart  string
	TakeEnd    string
}
