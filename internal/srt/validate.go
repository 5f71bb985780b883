package srt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// durationSlackSeconds is how far the last cue may run past the reported
// media duration before the document is flagged.
const durationSlackSeconds = 5.0

// CountCues returns the number of non-empty cue blocks in an SRT document.
func CountCues(document string) int {
	content := strings.TrimSpace(document)
	if content == "" {
		return 0
	}
	count := 0
	for _, block := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(block) != "" {
			count++
		}
	}
	return count
}

// Bounds returns the earliest start and latest end time code in a document,
// in seconds. found is false when the document has no parseable time range.
func Bounds(document string) (first, last float64, found bool) {
	first = math.Inf(1)
	for _, line := range strings.Split(document, "\n") {
		if !strings.Contains(line, "-->") {
			continue
		}
		parts := strings.Split(line, "-->")
		if len(parts) != 2 {
			continue
		}
		if start, err := ParseTimestamp(parts[0]); err == nil {
			if start < first {
				first = start
			}
			found = true
		}
		if end, err := ParseTimestamp(parts[1]); err == nil {
			if end > last {
				last = end
			}
		}
	}
	if !found {
		return 0, last, false
	}
	return first, last, true
}

// ParseTimestamp converts an SRT time code back to seconds. A period is
// accepted in place of the standard comma millisecond separator.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

// ValidateDocument checks a generated SRT document for structural issues
// before delivery. videoSeconds may be zero when the source duration is
// unknown. Returns a list of issues; empty means validation passed.
func ValidateDocument(document string, videoSeconds float64) []string {
	var issues []string

	cues := CountCues(document)
	if cues == 0 {
		return append(issues, "empty_subtitle_document")
	}

	first, last, found := Bounds(document)
	if !found {
		issues = append(issues, "no_valid_timestamps")
	} else if first > last {
		issues = append(issues, "inverted_time_range")
	}

	if videoSeconds > 0 && found {
		// Subtitles running well past the media are a symptom of a bad
		// transcription run rather than a formatting bug.
		if last > videoSeconds+durationSlackSeconds {
			issues = append(issues, fmt.Sprintf("duration_mismatch: last_cue=%.1fs video=%.1fs", last, videoSeconds))
		}
	}

	return issues
}
