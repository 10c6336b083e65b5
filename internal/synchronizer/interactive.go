package synchronizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"takeslice/internal/logging"
	"takeslice/internal/media/ffprobe"
	"takeslice/internal/timestamp"
)

// Prober reports the duration of a media file.
type Prober interface {
	Probe(ctx context.Context, path string) (time.Duration, error)
}

// FFprobe probes media with the ffprobe binary.
type FFprobe struct {
	Binary string
}

// Probe runs ffprobe and requires at least one audio or video stream.
func (f FFprobe) Probe(ctx context.Context, path string) (time.Duration, error) {
	result, err := ffprobe.Inspect(ctx, f.Binary, path)
	if err != nil {
		return 0, err
	}
	if !result.HasMedia() {
		return 0, errors.New("no audio or video streams")
	}
	return result.Duration(), nil
}

// Interactive asks the operator for each offset.
type Interactive struct {
	prompter *Prompter
	prober   Prober
	logger   *slog.Logger
}

// InteractiveOption configures an Interactive synchronizer.
type InteractiveOption func(*Interactive)

// WithProber verifies each track with prober before prompting.
func WithProber(prober Prober) InteractiveOption {
	return func(i *Interactive) {
		i.prober = prober
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) InteractiveOption {
	return func(i *Interactive) {
		i.logger = logger
	}
}

// NewInteractive constructs an interactive synchronizer reading answers
// through prompter.
func NewInteractive(prompter *Prompter, opts ...InteractiveOption) *Interactive {
	i := &Interactive{prompter: prompter}
	for _, opt := range opts {
		opt(i)
	}
	i.logger = logging.NewComponentLogger(i.logger, "synchronizer")
	return i
}

// Resolve prompts until the operator enters a valid HH:MM:SS.mmm offset. It
// never times out; it fails when the file is unreadable, when probing fails,
// or when input ends.
func (i *Interactive) Resolve(ctx context.Context, path string) (timestamp.Timestamp, error) {
	if err := checkReadable(path); err != nil {
		return timestamp.Zero, syncErr(path, StrategyInteractive, err)
	}
	name := filepath.Base(path)
	if i.prober != nil {
		duration, err := i.prober.Probe(ctx, path)
		if err != nil {
			return timestamp.Zero, syncErr(path, StrategyInteractive, fmt.Errorf("probe: %w", err))
		}
		if duration > 0 {
			i.prompter.Printf("%s: duration %s\n", name, timestamp.FromDuration(duration))
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return timestamp.Zero, syncErr(path, StrategyInteractive, err)
		}
		line, err := i.prompter.Ask(fmt.Sprintf("Offset of %s relative to the session audio (HH:MM:SS.mmm): ", name))
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = ErrNoInput
			}
			return timestamp.Zero, syncErr(path, StrategyInteractive, err)
		}
		offset, err := timestamp.Parse(strings.TrimSpace(line))
		if err != nil {
			i.prompter.Printf("Invalid offset: %v\n", err)
			i.logger.Debug("rejected operator offset",
				logging.String(logging.FieldTrack, name),
				logging.Error(err))
			continue
		}
		i.logger.Info("operator supplied offset",
			logging.String(logging.FieldTrack, name),
			logging.Offset("offset", offset))
		return offset, nil
	}
}
