package synchronizer

import (
	"context"
	"errors"
	"fmt"
	"os"

	"takeslice/internal/timestamp"
)

// Strategy names reported in SyncError.
const (
	StrategyInteractive = "interactive"
	StrategyCacheBacked = "cache"
	StrategyCorrelation = "correlation"
)

var (
	// ErrCorrelationUnsupported is returned by ContentCorrelation.
	ErrCorrelationUnsupported = errors.New("audio correlation is not implemented")
	// ErrNoInput means the operator input stream ended before a valid offset was read.
	ErrNoInput = errors.New("no operator input")
)

// Synchronizer resolves the offset of a track file relative to its session.
type Synchronizer interface {
	Resolve(ctx context.Context, path string) (timestamp.Timestamp, error)
}

// SyncError reports a failed resolution for one track file.
type SyncError struct {
	Path     string
	Strategy string
	Err      error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("synchronize %s (%s): %v", e.Path, e.Strategy, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

func syncErr(path, strategy string, err error) error {
	var existing *SyncError
	if errors.As(err, &existing) {
		return err
	}
	return &SyncError{Path: path, Strategy: strategy, Err: err}
}

func checkReadable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

// ContentCorrelation would align tracks by cross-correlating their audio.
type ContentCorrelation struct{}

// Resolve always fails with ErrCorrelationUnsupported.
func (ContentCorrelation) Resolve(_ context.Context, path string) (timestamp.Timestamp, error) {
	return timestamp.Zero, syncErr(path, StrategyCorrelation, ErrCorrelationUnsupported)
}
