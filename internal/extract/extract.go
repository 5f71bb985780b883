// Package extract implements the workflow stage that pulls a speech-ready
// audio track out of an uploaded video.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"subsmith/internal/config"
	"subsmith/internal/logging"
	"subsmith/internal/media"
	"subsmith/internal/queue"
	"subsmith/internal/services"
	"subsmith/internal/stage"
)

// Extractor converts staged video uploads into mono 16 kHz WAV audio.
type Extractor struct {
	cfg       *config.Config
	store     *queue.Store
	logger    *slog.Logger
	extractor media.Extractor
}

// New constructs the extractor stage handler using the ffmpeg CLI.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Extractor {
	cli := media.NewCLI(
		media.WithFFmpegBinary(cfg.FFmpegBinary()),
		media.WithFFprobeBinary(cfg.FFprobeBinary()),
	)
	return NewWithExtractor(cfg, store, logger, cli)
}

// NewWithExtractor allows injecting the media client (used in tests).
func NewWithExtractor(cfg *config.Config, store *queue.Store, logger *slog.Logger, extractor media.Extractor) *Extractor {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "extractor"))
	}
	return &Extractor{cfg: cfg, store: store, logger: stageLogger, extractor: extractor}
}

// Prepare implements stage.Handler.
func (e *Extractor) Prepare(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, e.logger)
	job.SetProgress("Extracting audio", "Preparing audio extraction", 0)
	job.ErrorMessage = ""
	logger.Info("starting extraction preparation",
		logging.String("source_file", strings.TrimSpace(job.SourceName)),
		logging.String("video_path", strings.TrimSpace(job.VideoPath)),
	)
	return nil
}

// Execute implements stage.Handler.
func (e *Extractor) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, e.logger)

	if strings.TrimSpace(job.VideoPath) == "" {
		return services.Wrap(
			services.ErrValidation, "extracting", "validate inputs",
			"No staged video present for extraction; re-upload the file", nil)
	}
	if _, err := os.Stat(job.VideoPath); err != nil {
		return services.Wrap(
			services.ErrValidation, "extracting", "validate inputs",
			"Staged video is missing from disk; re-upload the file", err)
	}

	duration, err := e.extractor.ProbeDuration(ctx, job.VideoPath)
	if err != nil {
		return services.Wrap(
			services.ErrExternalTool, "extracting", "probe duration",
			"Could not read the video duration", err)
	}
	job.DurationSeconds = duration

	job.SetProgress("Extracting audio", "Running ffmpeg", 30)
	if err := e.store.Update(ctx, job); err != nil {
		logger.Warn("failed to persist extraction progress", logging.Error(err))
	}

	audioPath, err := e.extractor.ExtractAudio(ctx, job.VideoPath, e.cfg.Paths.StagingDir)
	if err != nil {
		return services.Wrap(
			services.ErrExternalTool, "extracting", "extract audio",
			"Audio extraction failed", err)
	}
	job.AudioPath = audioPath
	job.SetProgress("Extracting audio", fmt.Sprintf("Extracted %s", filepath.Base(audioPath)), 100)

	logger.Info("audio extraction completed",
		logging.String("audio_path", audioPath),
		logging.Float64("duration_seconds", duration),
	)
	return nil
}

// HealthCheck implements stage.Handler.
func (e *Extractor) HealthCheck(context.Context) stage.Health {
	for _, binary := range []string{e.cfg.FFmpegBinary(), e.cfg.FFprobeBinary()} {
		if _, err := exec.LookPath(binary); err != nil {
			return stage.Unhealthy("extractor", fmt.Sprintf("%s not found in PATH", binary))
		}
	}
	return stage.Healthy("extractor")
}

var _ stage.Handler = (*Extractor)(nil)
