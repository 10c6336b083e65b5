package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"takeslice/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "slice", "encode", "ffmpeg failed", base)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"slice", "encode", "ffmpeg failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestClassifyAndExitCode(t *testing.T) {
	cases := []struct {
		err   error
		label string
		code  int
	}{
		{nil, "", services.ExitOK},
		{services.Wrap(services.ErrValidation, "load", "", "bad take", nil), "validation", services.ExitFailure},
		{services.Wrap(services.ErrConfiguration, "config", "", "missing", nil), "configuration", services.ExitUsage},
		{fmt.Errorf("run: %w", context.Canceled), "cancelled", services.ExitCancelled},
		{errors.New("plain"), "transient", services.ExitFailure},
	}
	for _, tc := range cases {
		if got := services.Classify(tc.err); got != tc.label {
			t.Errorf("Classify(%v) = %q, want %q", tc.err, got, tc.label)
		}
		if got := services.ExitCode(tc.err); got != tc.code {
			t.Errorf("ExitCode(%v) = %d, want %d", tc.err, got, tc.code)
		}
	}
}
