package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"subsmith/internal/fileutil"
	"subsmith/internal/logging"
	"subsmith/internal/notifications"
	"subsmith/internal/queue"
	"subsmith/internal/session"
)

var allowedExtensions = map[string]struct{}{
	".mp4": {}, ".avi": {}, ".mov": {}, ".mkv": {}, ".wmv": {},
	".flv": {}, ".webm": {}, ".m4v": {}, ".mpg": {}, ".mpeg": {},
}

// extensionForMime covers uploads whose filename carries no usable extension.
var extensionForMime = map[string]string{
	"video/mp4":        ".mp4",
	"video/quicktime":  ".mov",
	"video/x-msvideo":  ".avi",
	"video/x-matroska": ".mkv",
	"video/webm":       ".webm",
	"video/x-ms-wmv":   ".wmv",
	"video/x-flv":      ".flv",
	"video/mpeg":       ".mpg",
}

type incomingFile struct {
	fileID   string
	fileName string
	mimeType string
	size     int64
}

func (b *Bot) handleUpload(ctx context.Context, logger *slog.Logger, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	state := b.sessions.Get(chatID)
	awaiting, ok := state.(session.AwaitingUpload)
	if !ok {
		if state.Kind() == session.KindProcessing {
			b.reply(logger, chatID, busyText)
		} else {
			b.reply(logger, chatID, notExpectingText)
		}
		return
	}

	file, err := describeUpload(message)
	if err != nil {
		b.reply(logger, chatID, err.Error())
		return
	}
	if file.size > b.cfg.MaxFileBytes() {
		b.reply(logger, chatID, fmt.Sprintf(
			"That file is too large. The limit is %d MB.", b.cfg.Telegram.MaxFileMB))
		return
	}

	progressMsg, err := b.api.Send(tgbotapi.NewMessage(chatID, "Downloading your video..."))
	if err != nil {
		logger.Warn("failed to send progress message", logging.Error(err))
	}

	videoPath, err := b.downloadToStaging(ctx, file)
	if err != nil {
		logger.Error("upload download failed", logging.Error(err))
		b.reply(logger, chatID, "I could not download that file. Please try again.")
		return
	}

	job, err := b.store.NewJob(ctx, &queue.Job{
		ChatID:            chatID,
		UploadMessageID:   int64(message.MessageID),
		ProgressMessageID: int64(progressMsg.MessageID),
		SourceName:        file.fileName,
		Language:          awaiting.Language,
		VideoPath:         videoPath,
	})
	if err != nil {
		logger.Error("failed to enqueue job", logging.Error(err))
		b.removeQuiet(logger, videoPath)
		b.reply(logger, chatID, "Something went wrong queueing your video. Please try again.")
		return
	}

	if _, err := b.sessions.Apply(chatID, session.UploadAccepted{JobID: job.ID}); err != nil {
		logger.Warn("session rejected accepted upload", logging.Error(err))
	}

	if progressMsg.MessageID != 0 {
		edit := tgbotapi.NewEditMessageText(chatID, progressMsg.MessageID,
			fmt.Sprintf("Got it! Processing %s...", file.fileName))
		if _, err := b.api.Send(edit); err != nil {
			logger.Debug("failed to edit progress message", logging.Error(err))
		}
	}

	if b.notifier != nil {
		if err := b.notifier.Publish(ctx, notifications.EventJobReceived, notifications.Payload{
			"source":   file.fileName,
			"language": awaiting.Language,
		}); err != nil {
			logger.Debug("received notification failed", logging.Error(err))
		}
	}

	logger.Info("upload accepted",
		logging.Int64(logging.FieldJobID, job.ID),
		logging.String("source_file", file.fileName),
		logging.String("language", awaiting.Language),
		logging.Int64("size_bytes", file.size),
	)
}

// describeUpload validates the attachment and resolves a usable filename.
func describeUpload(message *tgbotapi.Message) (incomingFile, error) {
	var file incomingFile
	switch {
	case message.Video != nil:
		file = incomingFile{
			fileID:   message.Video.FileID,
			fileName: message.Video.FileName,
			mimeType: message.Video.MimeType,
			size:     int64(message.Video.FileSize),
		}
	case message.Document != nil:
		file = incomingFile{
			fileID:   message.Document.FileID,
			fileName: message.Document.FileName,
			mimeType: message.Document.MimeType,
			size:     int64(message.Document.FileSize),
		}
	default:
		return incomingFile{}, fmt.Errorf("please upload a video file")
	}

	file.fileName = strings.TrimSpace(file.fileName)
	ext := strings.ToLower(filepath.Ext(file.fileName))
	if ext == "" {
		// Telegram strips names from some clients; fall back to the mime type,
		// then to .mp4 when the mime type is unrecognized too.
		mapped, ok := extensionForMime[strings.ToLower(file.mimeType)]
		if !ok {
			mapped = ".mp4"
		}
		ext = mapped
		if file.fileName == "" {
			file.fileName = "video" + mapped
		} else {
			file.fileName += mapped
		}
	}
	if _, ok := allowedExtensions[ext]; !ok {
		return incomingFile{}, fmt.Errorf(
			"that file type is not supported. Send one of: %s", strings.Join(supportedExtensions(), ", "))
	}
	return file, nil
}

func supportedExtensions() []string {
	return []string{".mp4", ".avi", ".mov", ".mkv", ".wmv", ".flv", ".webm", ".m4v", ".mpg", ".mpeg"}
}

// downloadToStaging fetches the file from Telegram into the staging directory
// under a collision-proof name.
func (b *Bot) downloadToStaging(ctx context.Context, file incomingFile) (string, error) {
	url, err := b.api.GetFileDirectURL(file.fileID)
	if err != nil {
		return "", fmt.Errorf("resolve file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("download returned %d", resp.StatusCode)
	}

	if err := os.MkdirAll(b.cfg.Paths.StagingDir, 0o755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}
	target := filepath.Join(b.cfg.Paths.StagingDir, fileutil.StagingName(file.fileName))
	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create staging file: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		fileutil.RemoveAllQuiet(target)
		return "", fmt.Errorf("write staging file: %w", err)
	}
	if err := out.Close(); err != nil {
		fileutil.RemoveAllQuiet(target)
		return "", fmt.Errorf("close staging file: %w", err)
	}
	return target, nil
}

func (b *Bot) reply(logger *slog.Logger, chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logger.Warn("failed to send reply", logging.Error(err))
	}
}

func (b *Bot) removeQuiet(logger *slog.Logger, path string) {
	if err := fileutil.RemoveIfExists(path); err != nil {
		logger.Warn("failed to remove staging file", logging.String("path", path), logging.Error(err))
	}
}
