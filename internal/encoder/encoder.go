package encoder

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"takeslice/internal/logging"
	"takeslice/internal/timestamp"
)

// PartialPrefix marks in-progress output files.
const PartialPrefix = ".partial-"

// ErrOutputExists is returned when the destination appeared while ffmpeg was
// running. The existing file is left untouched.
var ErrOutputExists = errors.New("output already exists")

// Request describes one extraction.
type Request struct {
	Input  string
	Start  timestamp.Timestamp
	End    timestamp.Timestamp
	Output string
}

// Extractor performs extractions. The slicer depends on this interface.
type Extractor interface {
	Extract(ctx context.Context, req Request) error
}

// Option configures the encoder.
type Option func(*Encoder)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(e *Encoder) {
		if exec != nil {
			e.exec = exec
		}
	}
}

// WithVideoCodec sets the codec used when a profile re-encodes video.
func WithVideoCodec(codec string) Option {
	return func(e *Encoder) {
		if codec = strings.TrimSpace(codec); codec != "" {
			e.videoCodec = codec
		}
	}
}

// WithThreads sets the per-process ffmpeg thread count.
func WithThreads(threads int) Option {
	return func(e *Encoder) {
		if threads > 0 {
			e.threads = threads
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Encoder) {
		e.logger = logger
	}
}

// Encoder wraps ffmpeg invocations.
type Encoder struct {
	binary     string
	videoCodec string
	threads    int
	exec       Executor
	logger     *slog.Logger
}

// New constructs an encoder for the given ffmpeg binary.
func New(binary string, opts ...Option) (*Encoder, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	e := &Encoder{
		binary:     binary,
		videoCodec: "libx264",
		threads:    1,
		exec:       commandExecutor{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.NewComponentLogger(e.logger, "encoder")
	return e, nil
}

// Binary returns the ffmpeg executable in use.
func (e *Encoder) Binary() string {
	return e.binary
}

// Args returns the ffmpeg argument list that extracts req into output.
func (e *Encoder) Args(req Request, output string) []string {
	args := []string{
		"-hide_banner", "-nostdin", "-n",
		"-i", req.Input,
		"-ss", req.Start.String(),
		"-to", req.End.String(),
		"-threads", strconv.Itoa(e.threads),
	}
	args = append(args, profileArgs(filepath.Ext(req.Output), e.videoCodec)...)
	return append(args, output)
}

// Extract runs ffmpeg for req. The destination directory must exist.
func (e *Encoder) Extract(ctx context.Context, req Request) error {
	if strings.TrimSpace(req.Input) == "" || strings.TrimSpace(req.Output) == "" {
		return errors.New("extract: input and output are required")
	}
	if !req.End.After(req.Start) {
		return fmt.Errorf("extract: end %s is not after start %s", req.End, req.Start)
	}

	partial := PartialPath(req.Output)
	if err := os.Remove(partial); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove stale partial output: %w", err)
	}

	args := e.Args(req, partial)
	e.logger.Debug("running ffmpeg",
		logging.String("binary", e.binary),
		logging.String("args", strings.Join(args, " ")))

	stderr, err := e.exec.Run(ctx, e.binary, args)
	if err != nil {
		_ = os.Remove(partial)
		return newEncodeError(req.Output, args, stderr, err)
	}
	if err := finalize(partial, req.Output); err != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("finalize %s: %w", filepath.Base(req.Output), err)
	}
	return nil
}

// finalize moves partial to output without replacing an existing file.
func finalize(partial, output string) error {
	err := os.Link(partial, output)
	if err == nil {
		_ = os.Remove(partial)
		return nil
	}
	if errors.Is(err, fs.ErrExist) {
		return ErrOutputExists
	}
	// Filesystems without hard links fall back to a checked rename.
	if _, statErr := os.Lstat(output); statErr == nil {
		return ErrOutputExists
	} else if !errors.Is(statErr, fs.ErrNotExist) {
		return statErr
	}
	return os.Rename(partial, output)
}

// PartialPath returns the in-progress path used while encoding output.
func PartialPath(output string) string {
	return filepath.Join(filepath.Dir(output), PartialPrefix+filepath.Base(output))
}
