package session

import (
	"errors"
	"fmt"
)

// ErrMissingSource marks a session whose metadata or take list is absent.
var ErrMissingSource = errors.New("session source missing")

// LoadError reports a session that could not be built from its source records.
// It is fatal for the session and never for the run.
type LoadError struct {
	SessionID string
	Source    string
	Err       error
}

func (e *LoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("load session %q: %v", e.SessionID, e.Err)
	}
	return fmt.Sprintf("load session %q (%s): %v", e.SessionID, e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func loadErr(id, source string, err error) error {
	return &LoadError{SessionID: id, Source: source, Err: err}
}
