// Package transcriber implements the workflow stage that runs speech
// recognition on extracted audio and persists the timed segments.
package transcriber

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"subsmith/internal/config"
	"subsmith/internal/fileutil"
	"subsmith/internal/logging"
	"subsmith/internal/queue"
	"subsmith/internal/services"
	"subsmith/internal/stage"
	"subsmith/internal/transcribe"
)

// Transcriber feeds extracted audio through a speech-to-text backend.
type Transcriber struct {
	cfg     *config.Config
	store   *queue.Store
	logger  *slog.Logger
	backend transcribe.Backend
}

// New constructs the transcriber stage handler with the configured backend.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Transcriber, error) {
	backend, err := transcribe.New(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithBackend(cfg, store, logger, backend), nil
}

// NewWithBackend allows injecting the backend (used in tests).
func NewWithBackend(cfg *config.Config, store *queue.Store, logger *slog.Logger, backend transcribe.Backend) *Transcriber {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "transcriber"))
	}
	return &Transcriber{cfg: cfg, store: store, logger: stageLogger, backend: backend}
}

// Prepare implements stage.Handler.
func (t *Transcriber) Prepare(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, t.logger)
	job.SetProgress("Transcribing speech", "Preparing transcription", 0)
	job.ErrorMessage = ""
	logger.Info("starting transcription preparation",
		logging.String("audio_path", strings.TrimSpace(job.AudioPath)),
		logging.String("language", strings.TrimSpace(job.Language)),
		logging.String("backend", t.backend.Name()),
	)
	return nil
}

// Execute implements stage.Handler.
func (t *Transcriber) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, t.logger)

	if strings.TrimSpace(job.AudioPath) == "" {
		return services.Wrap(
			services.ErrValidation, "transcribing", "validate inputs",
			"No extracted audio present; rerun extraction", nil)
	}
	if _, err := os.Stat(job.AudioPath); err != nil {
		return services.Wrap(
			services.ErrValidation, "transcribing", "validate inputs",
			"Extracted audio is missing from disk; rerun extraction", err)
	}

	job.SetProgress("Transcribing speech", fmt.Sprintf("Running %s", t.backend.Name()), 10)
	if err := t.store.Update(ctx, job); err != nil {
		logger.Warn("failed to persist transcription progress", logging.Error(err))
	}

	transcript, err := t.backend.Transcribe(ctx, job.AudioPath, job.Language)
	if err != nil {
		return services.Wrap(
			services.ErrExternalTool, "transcribing", "recognize speech",
			"Speech recognition failed", err)
	}

	encoded, err := stage.EncodeSegments(transcript.Segments)
	if err != nil {
		return err
	}
	job.SegmentsJSON = encoded
	job.SetProgress("Transcribing speech", fmt.Sprintf("Recognized %d segment(s)", len(transcript.Segments)), 100)

	// The WAV is only needed for recognition.
	if err := fileutil.RemoveIfExists(job.AudioPath); err != nil {
		logger.Warn("failed to remove extracted audio", logging.String("path", job.AudioPath), logging.Error(err))
	} else {
		job.AudioPath = ""
	}

	logger.Info("transcription completed",
		logging.Int("segments", len(transcript.Segments)),
		logging.String("detected_language", strings.TrimSpace(transcript.Language)),
	)
	return nil
}

// HealthCheck implements stage.Handler.
func (t *Transcriber) HealthCheck(context.Context) stage.Health {
	switch strings.ToLower(t.cfg.Whisper.Backend) {
	case "whisper":
		if _, err := exec.LookPath(t.cfg.Whisper.Binary); err != nil {
			return stage.Unhealthy("transcriber", fmt.Sprintf("%s not found in PATH", t.cfg.Whisper.Binary))
		}
	case "openai":
		if strings.TrimSpace(t.cfg.Whisper.APIKey) == "" {
			return stage.Unhealthy("transcriber", "openai api key not configured")
		}
	}
	return stage.Healthy("transcriber")
}

var _ stage.Handler = (*Transcriber)(nil)
