package timestamp

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseKnownValues(t *testing.T) {
	cases := []struct {
		input string
		want  time.Duration
	}{
		{"00:00:00.000", 0},
		{"01:02:03.004", 3723004 * time.Millisecond},
		{"00:00:10.000", 10 * time.Second},
		{"00:59:59.999", 59*time.Minute + 59*time.Second + 999*time.Millisecond},
		{"123:00:00.000", 123 * time.Hour},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := Parse(tc.input)
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}
			if got.Duration() != tc.want {
				t.Fatalf("unexpected duration: got %v want %v", got.Duration(), tc.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"00:00:00.000",
		"00:00:12.500",
		"01:02:03.004",
		"10:00:00.001",
		"99:59:59.999",
		"100:00:00.000",
		"4567:12:34.056",
	}
	for _, input := range inputs {
		ts, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", input, err)
		}
		if got := ts.String(); got != input {
			t.Fatalf("round trip mismatch: got %q want %q", got, input)
		}
	}
}

func TestFormatCarriesMinutesIntoHours(t *testing.T) {
	ts := FromDuration(2*time.Hour + 5*time.Minute + 7*time.Second + 8*time.Millisecond)
	if got := ts.String(); got != "02:05:07.008" {
		t.Fatalf("unexpected format: %q", got)
	}
}

func TestParseErrorsNameField(t *testing.T) {
	cases := []struct {
		input string
		field Field
	}{
		{"", FieldHours},
		{"xx:00:00.000", FieldHours},
		{"1:00:00.000", FieldHours},
		{"-1:00:00.000", FieldHours},
		{"001:00:00.000", FieldHours},
		{"00", FieldMinutes},
		{"00:60:00.000", FieldMinutes},
		{"00:5:00.000", FieldMinutes},
		{"00:00", FieldSeconds},
		{"00:00:75.000", FieldSeconds},
		{"00:00:0a.000", FieldSeconds},
		{"00:00:00", FieldMillis},
		{"00:00:00.", FieldMillis},
		{"00:00:00.5", FieldMillis},
		{"00:00:00.1234", FieldMillis},
		{"00:00:00.+12", FieldMillis},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			_, err := Parse(tc.input)
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if perr.Field != tc.field {
				t.Fatalf("expected field %q, got %q (%v)", tc.field, perr.Field, err)
			}
		})
	}
}

func TestAddSubIdentity(t *testing.T) {
	pairs := [][2]string{
		{"00:00:00.000", "00:00:00.000"},
		{"00:00:10.000", "00:00:12.500"},
		{"00:59:59.999", "01:00:00.000"},
		{"00:00:01.000", "27:13:09.321"},
	}
	for _, pair := range pairs {
		a, b := MustParse(pair[0]), MustParse(pair[1])
		d, err := b.Sub(a)
		if err != nil {
			t.Fatalf("Sub(%s, %s) returned error: %v", b, a, err)
		}
		if got := a.AddDuration(d); got != b {
			t.Fatalf("a + (b - a) = %s, want %s", got, b)
		}
		if got := a.Add(FromDuration(d)); got != b {
			t.Fatalf("a.Add(b - a) = %s, want %s", got, b)
		}
	}
}

func TestSubInvertedIsError(t *testing.T) {
	early := MustParse("00:00:01.000")
	late := MustParse("00:00:02.000")
	if _, err := early.Sub(late); !errors.Is(err, ErrNegativeDuration) {
		t.Fatalf("expected ErrNegativeDuration, got %v", err)
	}
}

func TestAddSaturates(t *testing.T) {
	if got := Max.Add(MustParse("00:00:00.001")); got != Max {
		t.Fatalf("expected saturation at Max, got %s", got)
	}
	if _, err := Max.CheckedAdd(MustParse("00:00:00.001")); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
	sum, err := MustParse("00:00:10.000").CheckedAdd(MustParse("00:00:01.000"))
	if err != nil {
		t.Fatalf("CheckedAdd returned error: %v", err)
	}
	if sum.String() != "00:00:11.000" {
		t.Fatalf("unexpected sum: %s", sum)
	}
}

func TestAddDurationClampsAtZero(t *testing.T) {
	ts := MustParse("00:00:01.000")
	if got := ts.AddDuration(-5 * time.Second); !got.IsZero() {
		t.Fatalf("expected zero, got %s", got)
	}
}

func TestTextMarshalling(t *testing.T) {
	type payload struct {
		Offset Timestamp `json:"offset"`
	}
	data, err := json.Marshal(payload{Offset: MustParse("00:01:02.003")})
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if string(data) != `{"offset":"00:01:02.003"}` {
		t.Fatalf("unexpected json: %s", data)
	}
	var decoded payload
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if decoded.Offset.Millis() != 62003 {
		t.Fatalf("unexpected decoded offset: %s", decoded.Offset)
	}
	if err := json.Unmarshal([]byte(`{"offset":"nope"}`), &decoded); err == nil {
		t.Fatal("expected error for malformed offset")
	}
}
