package stage

import (
	"errors"
	"testing"

	"subsmith/internal/services"
	"subsmith/internal/srt"
)

func TestParseSegments_Valid(t *testing.T) {
	raw := `[{"start":0,"end":2.5,"text":"Hello"},{"start":2.5,"end":4,"text":"World"}]`
	segments, err := ParseSegments(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[1].Text != "World" {
		t.Fatalf("unexpected text: %q", segments[1].Text)
	}
}

func TestParseSegments_Empty(t *testing.T) {
	segments, err := ParseSegments("")
	if err != nil {
		t.Fatalf("unexpected error for empty input: %v", err)
	}
	if segments != nil {
		t.Fatalf("expected nil segments for empty input")
	}
}

func TestParseSegments_Invalid(t *testing.T) {
	_, err := ParseSegments("[invalid json")
	if err == nil {
		t.Fatal("expected error for invalid json")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEncodeSegmentsRoundTrip(t *testing.T) {
	in := []srt.Segment{{Start: 1.5, End: 3, Text: "Hi"}}
	raw, err := EncodeSegments(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := ParseSegments(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(out) != 1 || out[0] != in[0] {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}
