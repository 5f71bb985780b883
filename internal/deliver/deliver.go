// Package deliver implements the workflow stage that renders the SRT document
// and returns it to the chat that requested it.
package deliver

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"subsmith/internal/config"
	"subsmith/internal/fileutil"
	"subsmith/internal/language"
	"subsmith/internal/logging"
	"subsmith/internal/notifications"
	"subsmith/internal/queue"
	"subsmith/internal/services"
	"subsmith/internal/srt"
	"subsmith/internal/stage"
)

// Transport sends messages and files back to a chat. The bot implements it;
// tests inject fakes.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string) (int64, error)
	EditMessage(ctx context.Context, chatID, messageID int64, text string) error
	DeleteMessage(ctx context.Context, chatID, messageID int64) error
	SendDocument(ctx context.Context, chatID int64, path, caption string) error
}

// Deliverer builds the subtitle document and sends it to the requesting chat.
type Deliverer struct {
	cfg       *config.Config
	store     *queue.Store
	logger    *slog.Logger
	transport Transport
	notifier  notifications.Service
}

// New constructs the deliverer stage handler.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, transport Transport) *Deliverer {
	return NewWithNotifier(cfg, store, logger, transport, notifications.NewService(cfg))
}

// NewWithNotifier allows injecting the notifier (used in tests).
func NewWithNotifier(cfg *config.Config, store *queue.Store, logger *slog.Logger, transport Transport, notifier notifications.Service) *Deliverer {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "deliverer"))
	}
	return &Deliverer{cfg: cfg, store: store, logger: stageLogger, transport: transport, notifier: notifier}
}

// Prepare implements stage.Handler.
func (d *Deliverer) Prepare(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, d.logger)
	job.SetProgress("Delivering subtitles", "Building subtitle document", 0)
	job.ErrorMessage = ""
	logger.Info("starting delivery preparation",
		logging.String("source_file", strings.TrimSpace(job.SourceName)),
	)
	return nil
}

// Execute implements stage.Handler.
func (d *Deliverer) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, d.logger)

	segments, err := stage.ParseSegments(job.SegmentsJSON)
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return services.Wrap(
			services.ErrValidation, "delivering", "validate transcript",
			"No speech was recognized in the video", nil)
	}

	document := srt.BuildDocument(segments)
	for _, issue := range srt.ValidateDocument(document, job.DurationSeconds) {
		logger.Warn("subtitle document validation issue", logging.String("issue", issue))
	}

	subtitlePath := filepath.Join(d.cfg.Paths.StagingDir, subtitleFilename(job.SourceName, job.Language))
	if err := os.WriteFile(subtitlePath, []byte(document), 0o644); err != nil {
		return services.Wrap(
			services.ErrTransient, "delivering", "write subtitle file",
			"Could not write the subtitle file", err)
	}
	job.SubtitlePath = subtitlePath

	job.SetProgress("Delivering subtitles", "Uploading subtitle file", 50)
	if err := d.store.Update(ctx, job); err != nil {
		logger.Warn("failed to persist delivery progress", logging.Error(err))
	}

	caption := d.statsCaption(job, segments)
	if err := d.transport.SendDocument(ctx, job.ChatID, subtitlePath, caption); err != nil {
		return services.Wrap(
			services.ErrTransient, "delivering", "send subtitle file",
			"Could not send the subtitle file to the chat", err)
	}

	if job.ProgressMessageID != 0 {
		if err := d.transport.DeleteMessage(ctx, job.ChatID, job.ProgressMessageID); err != nil {
			logger.Debug("failed to delete progress message", logging.Error(err))
		}
		job.ProgressMessageID = 0
	}

	d.cleanupStaging(logger, job)
	job.SetProgress("Completed", "Subtitles delivered", 100)

	if d.notifier != nil {
		if err := d.notifier.Publish(ctx, notifications.EventJobCompleted, notifications.Payload{
			"subtitle": filepath.Base(subtitlePath),
		}); err != nil {
			logger.Debug("completion notification failed", logging.Error(err))
		}
	}

	logger.Info("subtitle delivery completed",
		logging.String("subtitle_path", subtitlePath),
		logging.Int("segments", len(segments)),
	)
	return nil
}

// HealthCheck implements stage.Handler.
func (d *Deliverer) HealthCheck(context.Context) stage.Health {
	if d.transport == nil {
		return stage.Unhealthy("deliverer", "chat transport not configured")
	}
	return stage.Healthy("deliverer")
}

func (d *Deliverer) statsCaption(job *queue.Job, segments []srt.Segment) string {
	name := language.DisplayName(job.Language)
	if name == "" {
		name = job.Language
	}
	duration := time.Duration(job.DurationSeconds * float64(time.Second)).Round(time.Second)
	average := 0.0
	if len(segments) > 0 {
		average = job.DurationSeconds / float64(len(segments))
	}
	return fmt.Sprintf("%s\nLanguage: %s\nSubtitles: %d\nVideo length: %s\nAverage subtitle: %.1fs",
		filepath.Base(strings.TrimSpace(job.SourceName)), name, len(segments), duration, average)
}

// cleanupStaging removes per-job staging files once the document is sent.
func (d *Deliverer) cleanupStaging(logger *slog.Logger, job *queue.Job) {
	for _, path := range []string{job.VideoPath, job.AudioPath, job.SubtitlePath} {
		if err := fileutil.RemoveIfExists(path); err != nil {
			logger.Warn("failed to remove staging file", logging.String("path", path), logging.Error(err))
		}
	}
	job.VideoPath = ""
	job.AudioPath = ""
}

func subtitleFilename(sourceName, lang string) string {
	base := strings.TrimSpace(filepath.Base(sourceName))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = "subtitles"
	}
	if lang == "" {
		return stem + "_synced.srt"
	}
	return fmt.Sprintf("%s_%s_synced.srt", stem, lang)
}

var _ stage.Handler = (*Deliverer)(nil)
