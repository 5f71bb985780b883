package srt

import (
	"fmt"
	"math"
	"strings"
)

// Segment is a time-stamped span of spoken text produced by a transcription
// backend. Start and End are seconds from the beginning of the media.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Normalize repairs the two invalid-timing cases a transcription backend can
// emit: a negative start is clamped to zero, and a non-positive duration is
// stretched to a one-second display floor. Segments that already satisfy
// start >= 0 and end > start pass through unchanged.
func Normalize(seg Segment) Segment {
	if seg.Start < 0 {
		seg.Start = 0
	}
	if seg.End <= seg.Start {
		seg.End = seg.Start + 1
	}
	return seg
}

// FormatTimestamp renders seconds as an SRT time code, HH:MM:SS,mmm.
// The millisecond field truncates the fractional remainder rather than
// rounding it. Hour values of 100 or more render as-is.
func FormatTimestamp(seconds float64) string {
	// Quantize to whole microseconds first so values like 59.999 are not
	// pushed below their intended millisecond by float representation error.
	micros := int64(math.Round(seconds * 1e6))
	if micros < 0 {
		micros = 0
	}
	whole := micros / 1_000_000
	millis := micros % 1_000_000 / 1000

	hours := whole / 3600
	minutes := whole % 3600 / 60
	secs := whole % 60
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// CleanText trims surrounding whitespace and normalizes period runs: every
// "..." becomes a single ellipsis rune, then every remaining ".." collapses to
// a single period. The triple-period pass must run first or "..." would
// collapse to "." and lose the ellipsis.
func CleanText(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "...", "…")
	return strings.ReplaceAll(text, "..", ".")
}

// BuildDocument converts ordered transcript segments into a complete SRT
// document. Each segment yields a four-line record (1-based index, time range,
// cleaned text, blank separator) in input order. An empty input produces an
// empty document.
func BuildDocument(segments []Segment) string {
	var builder strings.Builder
	for i, seg := range segments {
		seg = Normalize(seg)
		builder.WriteString(fmt.Sprintf("%d\n", i+1))
		builder.WriteString(FormatTimestamp(seg.Start))
		builder.WriteString(" --> ")
		builder.WriteString(FormatTimestamp(seg.End))
		builder.WriteByte('\n')
		builder.WriteString(CleanText(seg.Text))
		builder.WriteString("\n\n")
	}
	return builder.String()
}
