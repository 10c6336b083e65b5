package session

import (
	"errors"
	"fmt"
	"strings"

	"takeslice/internal/timestamp"
)

// FromRaw validates a raw record and returns the session (with its audio
// track) and its takes in source order.
func FromRaw(raw Raw) (Session, []Take, error) {
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		return Session{}, nil, loadErr(raw.ID, "", errors.New("empty session id"))
	}
	if strings.TrimSpace(raw.AudioPath) == "" {
		return Session{}, nil, loadErr(id, AudioFile, fmt.Errorf("%w: audio path", ErrMissingSource))
	}
	if raw.Meta == nil {
		return Session{}, nil, loadErr(id, MetadataFile, ErrMissingSource)
	}
	if raw.Takes == nil {
		return Session{}, nil, loadErr(id, TakesFile, ErrMissingSource)
	}

	offset, err := timestamp.Parse(strings.TrimSpace(raw.Meta.SyncOffset))
	if err != nil {
		return Session{}, nil, loadErr(id, MetadataFile, fmt.Errorf("SyncOffset: %w", err))
	}

	takes := make([]Take, 0, len(raw.Takes))
	for i, rt := range raw.Takes {
		take, err := takeFromRaw(id, rt)
		if err != nil {
			return Session{}, nil, loadErr(id, TakesFile, fmt.Errorf("row %d: %w", i+1, err))
		}
		takes = append(takes, take)
	}

	sess := Session{
		ID:     id,
		Tracks: []Track{{File: raw.AudioPath, SyncOffset: offset}},
	}
	return sess, takes, nil
}

func takeFromRaw(sessionID string, rt RawTake) (Take, error) {
	chunk := strings.TrimSpace(rt.ChunkIndex)
	if chunk == "" {
		return Take{}, errors.New("chunk_index: missing")
	}
	start, err := timestamp.Parse(strings.TrimSpace(rt.TakeStart))
	if err != nil {
		return Take{}, fmt.Errorf("take_start: %w", err)
	}
	end, err := timestamp.Parse(strings.TrimSpace(rt.TakeEnd))
	if err != nil {
		return Take{}, fmt.Errorf("take_end: %w", err)
	}
	if !end.After(start) {
		return Take{}, fmt.Errorf("take_end %s must be after take_start %s", end, start)
	}
	return Take{
		SessionID: sessionID,
		ChunkID:   chunk,
		Start:     start,
		End:       end,
		Mark:      strings.TrimSpace(rt.TakeMark),
	}, nil
}
