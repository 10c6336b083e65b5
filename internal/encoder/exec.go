package encoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

const stderrTailLines = 8

// Executor abstracts command execution for testability. Run returns whatever
// the process wrote to stderr.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.Bytes(), err
}

// EncodeError reports a failed ffmpeg invocation.
type EncodeError struct {
	Output   string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *EncodeError) Error() string {
	var b strings.Builder
	if e.ExitCode >= 0 {
		fmt.Fprintf(&b, "encode %s: ffmpeg exited with status %d", e.Output, e.ExitCode)
	} else {
		fmt.Fprintf(&b, "encode %s: %v", e.Output, e.Err)
	}
	if tail := tailLines(e.Stderr, stderrTailLines); tail != "" {
		b.WriteString(": ")
		b.WriteString(tail)
	}
	return b.String()
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

func newEncodeError(output string, args []string, stderr []byte, err error) *EncodeError {
	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	return &EncodeError{
		Output:   output,
		Args:     append([]string(nil), args...),
		ExitCode: code,
		Stderr:   strings.TrimSpace(string(stderr)),
		Err:      err,
	}
}

func tailLines(text string, n int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.Join(lines, " | ")
}
