package logging

import (
	"context"
	"log/slog"
)

const (
	defaultErrorHint = "check logs for details"
	defaultImpact    = "run continues with reduced output"
)

// WarnWithContext logs a degraded-but-continuing condition. Every warning
// carries event_type, error_hint and impact; missing ones get defaults.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...slog.Attr) {
	if logger == nil {
		return
	}
	logger.LogAttrs(context.Background(), slog.LevelWarn, msg, ensureFields(attrs, eventType, true)...)
}

// ErrorWithContext logs a failure with event_type and error_hint filled in.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...slog.Attr) {
	if logger == nil {
		return
	}
	logger.LogAttrs(context.Background(), slog.LevelError, msg, ensureFields(attrs, eventType, false)...)
}

func ensureFields(attrs []slog.Attr, eventType string, withImpact bool) []slog.Attr {
	var hasEvent, hasHint, hasImpact bool
	for _, a := range attrs {
		switch a.Key {
		case FieldEventType:
			hasEvent = true
		case FieldErrorHint:
			hasHint = true
		case FieldImpact:
			hasImpact = true
		}
	}
	if !hasEvent {
		attrs = append(attrs, slog.String(FieldEventType, eventType))
	}
	if !hasHint {
		attrs = append(attrs, slog.String(FieldErrorHint, defaultErrorHint))
	}
	if withImpact && !hasImpact {
		attrs = append(attrs, slog.String(FieldImpact, defaultImpact))
	}
	return attrs
}
