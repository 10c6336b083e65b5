package timestamp

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrNegativeDuration is returned by Sub when the subtrahend is later than the receiver.
var ErrNegativeDuration = errors.New("timestamp subtraction would be negative")

// ErrOverflow is returned by CheckedAdd when the sum exceeds the representable range.
var ErrOverflow = errors.New("timestamp addition overflows")

// Max is the largest representable timestamp.
var Max = Timestamp{ms: math.MaxInt64 / int64(time.Millisecond)}

// Timestamp is a non-negative offset with millisecond resolution.
type Timestamp struct {
	ms int64
}

// Zero is the session origin.
var Zero = Timestamp{}

// FromMillis builds a timestamp from a millisecond count. Negative input clamps to zero.
func FromMillis(ms int64) Timestamp {
	if ms < 0 {
		return Zero
	}
	if ms > Max.ms {
		return Max
	}
	return Timestamp{ms: ms}
}

// FromDuration truncates d to whole milliseconds. Negative input clamps to zero.
func FromDuration(d time.Duration) Timestamp {
	return FromMillis(d.Milliseconds())
}

// Millis returns the timestamp as a millisecond count.
func (t Timestamp) Millis() int64 { return t.ms }

// Duration returns the timestamp as a time.Duration.
func (t Timestamp) Duration() time.Duration {
	return time.Duration(t.ms) * time.Millisecond
}

// IsZero reports whether the timestamp is the origin.
func (t Timestamp) IsZero() bool { return t.ms == 0 }

// Before reports whether t is strictly earlier than other.
func (t Timestamp) Before(other Timestamp) bool { return t.ms < other.ms }

// After reports whether t is strictly later than other.
func (t Timestamp) After(other Timestamp) bool { return t.ms > other.ms }

// Compare returns -1, 0 or +1.
func (t Timestamp) Compare(other Timestamp) int {
	switch {
	case t.ms < other.ms:
		return -1
	case t.ms > other.ms:
		return 1
	default:
		return 0
	}
}

// Add returns t+other, saturating at Max.
func (t Timestamp) Add(other Timestamp) Timestamp {
	sum, err := t.CheckedAdd(other)
	if err != nil {
		return Max
	}
	return sum
}

// AddDuration returns t+d truncated to milliseconds. Results below zero clamp to
// zero and results above Max saturate.
func (t Timestamp) AddDuration(d time.Duration) Timestamp {
	delta := d.Milliseconds()
	if delta >= 0 {
		return t.Add(FromMillis(delta))
	}
	if -delta >= t.ms {
		return Zero
	}
	return Timestamp{ms: t.ms + delta}
}

// CheckedAdd returns t+other or ErrOverflow.
func (t Timestamp) CheckedAdd(other Timestamp) (Timestamp, error) {
	if other.ms > Max.ms-t.ms {
		return Max, fmt.Errorf("%w: %s + %s", ErrOverflow, t, other)
	}
	return Timestamp{ms: t.ms + other.ms}, nil
}

// Sub returns the duration from other to t. It fails with ErrNegativeDuration
// when other is later than t.
func (t Timestamp) Sub(other Timestamp) (time.Duration, error) {
	if other.ms > t.ms {
		return 0, fmt.Errorf("%w: %s - %s", ErrNegativeDuration, t, other)
	}
	return time.Duration(t.ms-other.ms) * time.Millisecond, nil
}

// String renders the canonical HH:MM:SS.mmm form.
func (t Timestamp) String() string {
	ms := t.ms
	hours := ms / 3_600_000
	ms -= hours * 3_600_000
	minutes := ms / 60_000
	ms -= minutes * 60_000
	seconds := ms / 1000
	ms -= seconds * 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, ms)
}

// MarshalText implements encoding.TextMarshaler.
func (t Timestamp) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Timestamp) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Field identifies which component of a timestamp failed to parse.
type Field string

const (
	FieldHours   Field = "hours"
	FieldMinutes Field = "minutes"
	FieldSeconds Field = "seconds"
	FieldMillis  Field = "millis"
)

// ParseError reports a malformed timestamp and the field that was invalid or missing.
type ParseError struct {
	Input  string
	Field  Field
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse timestamp %q: %s: %s (want HH:MM:SS.mmm)", e.Input, e.Field, e.Reason)
}

// Parse accepts exactly HH:MM:SS.mmm. Hours take at least two digits; minutes
// and seconds take exactly two and must be below 60; millis take exactly three.
func Parse(text string) (Timestamp, error) {
	fail := func(field Field, reason string) (Timestamp, error) {
		return Zero, &ParseError{Input: text, Field: field, Reason: reason}
	}

	hoursPart, rest, ok := strings.Cut(text, ":")
	if !ok {
		if hoursPart == "" {
			return fail(FieldHours, "missing")
		}
		return fail(FieldMinutes, "missing")
	}
	minutesPart, rest, ok := strings.Cut(rest, ":")
	if !ok {
		return fail(FieldSeconds, "missing")
	}
	secondsPart, millisPart, ok := strings.Cut(rest, ".")
	if !ok {
		return fail(FieldMillis, "missing")
	}

	hours, err := parseDigits(hoursPart, 2, 0)
	if err != "" {
		return fail(FieldHours, err)
	}
	if len(hoursPart) > 2 && hoursPart[0] == '0' {
		return fail(FieldHours, "leading zero beyond two digits")
	}
	minutes, err := parseDigits(minutesPart, 2, 2)
	if err != "" {
		return fail(FieldMinutes, err)
	}
	if minutes >= 60 {
		return fail(FieldMinutes, "must be below 60")
	}
	seconds, err := parseDigits(secondsPart, 2, 2)
	if err != "" {
		return fail(FieldSeconds, err)
	}
	if seconds >= 60 {
		return fail(FieldSeconds, "must be below 60")
	}
	millis, err := parseDigits(millisPart, 3, 3)
	if err != "" {
		return fail(FieldMillis, err)
	}

	const maxHours = math.MaxInt64 / int64(time.Millisecond) / 3_600_000
	if hours > maxHours {
		return fail(FieldHours, "out of range")
	}
	total := hours*3_600_000 + minutes*60_000 + seconds*1000 + millis
	if total > Max.ms {
		return fail(FieldHours, "out of range")
	}
	return Timestamp{ms: total}, nil
}

// MustParse is Parse for literals known to be valid. It panics on error.
func MustParse(text string) Timestamp {
	ts, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return ts
}

// parseDigits validates an ASCII digit run of the given width bounds (max 0
// means unbounded) and returns its value or a reason string.
func parseDigits(value string, minWidth, maxWidth int) (int64, string) {
	if value == "" {
		return 0, "missing"
	}
	if len(value) < minWidth || (maxWidth > 0 && len(value) > maxWidth) {
		if maxWidth == minWidth {
			return 0, fmt.Sprintf("want %d digits, got %q", minWidth, value)
		}
		return 0, fmt.Sprintf("want at least %d digits, got %q", minWidth, value)
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return 0, fmt.Sprintf("not a number: %q", value)
		}
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, "out of range"
	}
	return n, ""
}
