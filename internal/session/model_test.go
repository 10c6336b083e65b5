package session_test

import (
	"errors"
	"testing"

	"takeslice/internal/session"
	"takeslice/internal/timestamp"
)

func sampleRaw() session.Raw {
	return session.Raw{
		ID:        "S1",
		AudioPath: "/sessions/S1/audio.wav",
		Meta:      &session.RawMeta{SyncOffset: "00:00:00.250"},
		Takes: []session.RawTake{
			{ChunkIndex: "3", TakeIndex: "0", TakeMark: "A", TakeStart: "00:00:10.000", TakeEnd: "00:00:12.500"},
			{ChunkIndex: "4", TakeIndex: "0", TakeMark: " B ", TakeStart: "00:00:20.000", TakeEnd: "00:00:21.000"},
		},
	}
}

func TestFromRawBuildsAudioTrackAndTakes(t *testing.T) {
	sess, takes, err := session.FromRaw(sampleRaw())
	if err != nil {
		t.Fatalf("FromRaw returned error: %v", err)
	}
	if sess.ID != "S1" {
		t.Fatalf("unexpected id %q", sess.ID)
	}
	if len(sess.Tracks) != 1 {
		t.Fatalf("expected audio track only, got %d tracks", len(sess.Tracks))
	}
	if sess.Tracks[0].File != "/sessions/S1/audio.wav" || sess.Tracks[0].SyncOffset.String() != "00:00:00.250" {
		t.Fatalf("unexpected audio track: %+v", sess.Tracks[0])
	}
	if len(takes) != 2 {
		t.Fatalf("expected 2 takes, got %d", len(takes))
	}
	first := takes[0]
	if first.SessionID != "S1" || first.ChunkID != "3" || first.Mark != "A" {
		t.Fatalf("unexpected first take: %+v", first)
	}
	if first.Start != timestamp.MustParse("00:00:10.000") || first.End != timestamp.MustParse("00:00:12.500") {
		t.Fatalf("unexpected first take range: %s-%s", first.Start, first.End)
	}
	if takes[1].Mark != "B" {
		t.Fatalf("expected trimmed mark, got %q", takes[1].Mark)
	}
}

func TestFromRawRejectsInvalidRecords(t *testing.T) {
	cases := map[string]func(*session.Raw){
		"missing metadata":  func(r *session.Raw) { r.Meta = nil },
		"missing takes":     func(r *session.Raw) { r.Takes = nil },
		"missing audio":     func(r *session.Raw) { r.AudioPath = "" },
		"empty id":          func(r *session.Raw) { r.ID = " " },
		"bad offset":        func(r *session.Raw) { r.Meta.SyncOffset = "0:0:0" },
		"bad start":         func(r *session.Raw) { r.Takes[0].TakeStart = "later" },
		"end equals start":  func(r *session.Raw) { r.Takes[1].TakeEnd = r.Takes[1].TakeStart },
		"end before start":  func(r *session.Raw) { r.Takes[0].TakeEnd = "00:00:09.000" },
		"missing chunk id":  func(r *session.Raw) { r.Takes[0].ChunkIndex = "" },
		"malformed end":     func(r *session.Raw) { r.Takes[1].TakeEnd = "00:00:21" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			raw := sampleRaw()
			mutate(&raw)
			_, _, err := session.FromRaw(raw)
			var loadErr *session.LoadError
			if !errors.As(err, &loadErr) {
				t.Fatalf("expected LoadError, got %v", err)
			}
		})
	}
}

func TestFromRawSurfacesParseError(t *testing.T) {
	raw := sampleRaw()
	raw.Takes[0].TakeStart = "00:61:00.000"
	_, _, err := session.FromRaw(raw)
	var parseErr *timestamp.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected wrapped ParseError, got %v", err)
	}
	if parseErr.Field != timestamp.FieldMinutes {
		t.Fatalf("unexpected field %q", parseErr.Field)
	}
}

func TestSessionCloneIsIndependent(t *testing.T) {
	sess, _, err := session.FromRaw(sampleRaw())
	if err != nil {
		t.Fatalf("FromRaw returned error: %v", err)
	}
	clone := sess.Clone()
	clone.Tracks = append(clone.Tracks, session.Track{File: "video.mp4"})
	clone.Tracks[0].File = "changed.wav"
	if len(sess.Tracks) != 1 || sess.Tracks[0].File != "/sessions/S1/audio.wav" {
		t.Fatalf("clone mutated original: %+v", sess.Tracks)
	}
}

func TestTrackExt(t *testing.T) {
	if ext := (session.Track{File: "/v/video-S1.mp4"}).Ext(); ext != "mp4" {
		t.Fatalf("unexpected ext %q", ext)
	}
	if ext := (session.Track{File: "/v/noext"}).Ext(); ext != "" {
		t.Fatalf("expected empty ext, got %q", ext)
	}
}
