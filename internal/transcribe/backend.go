// Package transcribe provides pluggable speech-to-text backends that turn an
// extracted audio file into timed transcript segments.
package transcribe

import (
	"context"
	"fmt"
	"strings"

	"subsmith/internal/config"
	"subsmith/internal/srt"
)

// Transcript bundles the recognized segments with the detected language.
type Transcript struct {
	Language string
	Segments []srt.Segment
}

// Backend is a pluggable transcription backend.
type Backend interface {
	// Transcribe recognizes speech in the audio file using the given
	// ISO 639-1 language hint.
	Transcribe(ctx context.Context, audioPath, language string) (Transcript, error)
	// Name identifies the backend in logs and health output.
	Name() string
}

// New selects a backend based on the configured provider.
func New(cfg *config.Config) (Backend, error) {
	switch strings.ToLower(cfg.Whisper.Backend) {
	case "whisper":
		return NewWhisperCLI(cfg.Whisper.Binary, cfg.Whisper.Model), nil
	case "openai":
		return NewOpenAIBackend(cfg.Whisper.APIKey, cfg.Whisper.Model, cfg.Whisper.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown whisper backend %q", cfg.Whisper.Backend)
	}
}
