package srt

import "testing"

func TestNormalizeIsIdentityForValidSegments(t *testing.T) {
	seg := Segment{Start: 1.5, End: 3.25, Text: "hello"}
	if got := Normalize(seg); got != seg {
		t.Fatalf("expected identity, got %+v", got)
	}
}

func TestNormalizeClampsNegativeStart(t *testing.T) {
	got := Normalize(Segment{Start: -2.5, End: 1, Text: "x"})
	if got.Start != 0 {
		t.Fatalf("expected start 0, got %v", got.Start)
	}
	if got.End != 1 {
		t.Fatalf("expected end unchanged at 1, got %v", got.End)
	}
}

func TestNormalizeEnforcesMinimumDuration(t *testing.T) {
	cases := []struct {
		name    string
		seg     Segment
		wantEnd float64
	}{
		{"zero duration", Segment{Start: 5, End: 5}, 6},
		{"inverted range", Segment{Start: 5, End: 4}, 6},
		{"negative start and inverted", Segment{Start: -1, End: -3}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.seg)
			if got.End != tc.wantEnd {
				t.Fatalf("expected end %v, got %v", tc.wantEnd, got.End)
			}
			if got.End <= got.Start {
				t.Fatalf("expected positive duration, got start=%v end=%v", got.Start, got.End)
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{3661.25, "01:01:01,250"},
		{59.999, "00:00:59,999"},
		{1.2345, "00:00:01,234"}, // millisecond remainder truncated, not rounded
		{7200, "02:00:00,000"},
		{360000, "100:00:00,000"}, // hours >= 100 render as-is
	}
	for _, tc := range cases {
		if got := FormatTimestamp(tc.seconds); got != tc.want {
			t.Fatalf("FormatTimestamp(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestCleanTextEllipsisPrecedesDoublePeriodCollapse(t *testing.T) {
	if got := CleanText("Hello...world.."); got != "Hello…world." {
		t.Fatalf("expected %q, got %q", "Hello…world.", got)
	}
}

func TestCleanTextTrimsWhitespace(t *testing.T) {
	if got := CleanText("  so it goes \n"); got != "so it goes" {
		t.Fatalf("expected trimmed text, got %q", got)
	}
}

func TestBuildDocumentEmptyInput(t *testing.T) {
	if got := BuildDocument(nil); got != "" {
		t.Fatalf("expected empty document, got %q", got)
	}
}

func TestBuildDocumentTwoSegments(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 2, Text: "Hi"},
		{Start: 2, End: 3, Text: "Bye"},
	}
	want := "1\n00:00:00,000 --> 00:00:02,000\nHi\n\n2\n00:00:02,000 --> 00:00:03,000\nBye\n\n"
	if got := BuildDocument(segments); got != want {
		t.Fatalf("unexpected document:\n%q\nwant:\n%q", got, want)
	}
}

func TestBuildDocumentIndexesAreSequential(t *testing.T) {
	segments := make([]Segment, 7)
	for i := range segments {
		segments[i] = Segment{Start: float64(i), End: float64(i) + 1, Text: "line"}
	}
	doc := BuildDocument(segments)
	if got := CountCues(doc); got != len(segments) {
		t.Fatalf("expected %d cues, got %d", len(segments), got)
	}
	// The document parses back to the bounds we put in.
	first, last, found := Bounds(doc)
	if !found {
		t.Fatal("expected parseable bounds")
	}
	if first != 0 || last != 7 {
		t.Fatalf("expected bounds [0, 7], got [%v, %v]", first, last)
	}
}

func TestBuildDocumentNormalizesBeforeFormatting(t *testing.T) {
	doc := BuildDocument([]Segment{{Start: -1.5, End: -1.5, Text: "fixed"}})
	want := "1\n00:00:00,000 --> 00:00:01,000\nfixed\n\n"
	if doc != want {
		t.Fatalf("expected %q, got %q", want, doc)
	}
}
