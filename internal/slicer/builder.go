package slicer

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"takeslice/internal/encoder"
	"takeslice/internal/logging"
	"takeslice/internal/session"
)

var (
	// ErrDuplicateSession is returned when a session ID is registered twice.
	ErrDuplicateSession = errors.New("session already registered")
	// ErrUnknownSession is returned when a track is added to an unregistered session.
	ErrUnknownSession = errors.New("unknown session")
	// ErrOutputConflict is recorded for a job whose output path was already
	// claimed by an earlier job in the same run.
	ErrOutputConflict = errors.New("output path claimed by another job")
)

type entry struct {
	session session.Session
	takes   []session.Take
}

func (e entry) clone() entry {
	return entry{
		session: e.session.Clone(),
		takes:   append([]session.Take(nil), e.takes...),
	}
}

// Builder accumulates sessions before slicing. It is safe for concurrent use.
type Builder struct {
	mu       sync.RWMutex
	sessions map[string]entry
	order    []string
	logger   *slog.Logger
}

// NewBuilder returns an empty builder.
func NewBuilder(logger *slog.Logger) *Builder {
	return &Builder{
		sessions: make(map[string]entry),
		logger:   logging.NewComponentLogger(logger, "slicer"),
	}
}

// RegisterSession validates raw and registers the resulting session. A
// *session.LoadError leaves the builder unchanged; a repeated ID is rejected
// with ErrDuplicateSession.
func (b *Builder) RegisterSession(raw session.Raw) error {
	sess, takes, err := session.FromRaw(raw)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.sessions[sess.ID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateSession, sess.ID)
	}
	b.sessions[sess.ID] = entry{session: sess, takes: takes}
	b.order = append(b.order, sess.ID)

	b.logger.Debug("session registered",
		logging.String(logging.FieldSessionID, sess.ID),
		logging.Int("take_count", len(takes)))
	return nil
}

// AddTrack appends track to the session with the given ID.
func (b *Builder) AddTrack(id string, track session.Track) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSession, id)
	}
	e.session.Tracks = append(e.session.Tracks, track)
	b.sessions[id] = e

	b.logger.Debug("track attached",
		logging.String(logging.FieldSessionID, id),
		logging.Int(logging.FieldTrack, len(e.session.Tracks)-1),
		logging.String("file", track.File),
		logging.Offset("offset", track.SyncOffset))
	return nil
}

// Session returns a copy of the registered session.
func (b *Builder) Session(id string) (session.Session, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.sessions[id]
	if !ok {
		return session.Session{}, false
	}
	return e.session.Clone(), true
}

// IDs returns registered session IDs in registration order.
func (b *Builder) IDs() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]string(nil), b.order...)
}

// Build snapshots the registered sessions into an immutable Slicer. Later
// builder mutations do not affect the returned Slicer.
func (b *Builder) Build(extractor encoder.Extractor, opts ...Option) *Slicer {
	b.mu.RLock()
	entries := make([]entry, 0, len(b.order))
	for _, id := range b.order {
		entries = append(entries, b.sessions[id].clone())
	}
	b.mu.RUnlock()

	s := &Slicer{
		entries:   entries,
		extractor: extractor,
		logger:    b.logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
