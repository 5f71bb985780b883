package stage

import (
	"encoding/json"

	"subsmith/internal/services"
	"subsmith/internal/srt"
)

// ParseSegments decodes the transcript segments persisted on a job.
// On failure it returns a services.ErrValidation suitable for stage Execute methods.
func ParseSegments(raw string) ([]srt.Segment, error) {
	if raw == "" {
		return nil, nil
	}
	var segments []srt.Segment
	if err := json.Unmarshal([]byte(raw), &segments); err != nil {
		return nil, services.Wrap(
			services.ErrValidation, "stage", "parse segments",
			"Transcript segments missing or invalid; rerun transcription", err)
	}
	return segments, nil
}

// EncodeSegments serializes transcript segments for persistence on a job.
func EncodeSegments(segments []srt.Segment) (string, error) {
	payload, err := json.Marshal(segments)
	if err != nil {
		return "", services.Wrap(
			services.ErrValidation, "stage", "encode segments",
			"Transcript segments could not be serialized", err)
	}
	return string(payload), nil
}
