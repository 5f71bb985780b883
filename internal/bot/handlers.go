package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"subsmith/internal/language"
	"subsmith/internal/logging"
	"subsmith/internal/notifications"
	"subsmith/internal/queue"
	"subsmith/internal/session"
)

const (
	startText = "Hi! I turn videos into SRT subtitle files.\n\n" +
		"Send /convert to start, pick a subtitle language, then upload your video. " +
		"Use /cancel at any time to abort, and /help for details."
	helpText = "Commands:\n" +
		"/convert - start a new subtitle job\n" +
		"/cancel - abort the current job\n" +
		"/help - show this message\n\n" +
		"After /convert, choose a language and upload a video file. " +
		"I extract the audio, run speech recognition, and send back a .srt file."
	chooseLanguageText  = "Choose the subtitle language:"
	awaitingUploadText  = "Now send me the video file."
	nothingToCancelText = "Nothing to cancel."
	cancelledText       = "Cancelled. Send /convert to start over."
	busyText            = "I'm still working on your previous video. Send /cancel to abort it first."
	notExpectingText    = "Send /convert first, then choose a language before uploading."

	languageCallbackPrefix = "lang:"
)

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	logger := logging.WithContext(ctx, b.logger).With(logging.Int64(logging.FieldChatID, chatID))

	if message.IsCommand() {
		b.handleCommand(ctx, logger, message)
		return
	}
	if message.Video != nil || message.Document != nil {
		b.handleUpload(ctx, logger, message)
		return
	}

	// Plain text outside a command: nudge based on conversation state.
	switch b.sessions.Get(chatID).(type) {
	case session.AwaitingLanguage:
		b.reply(logger, chatID, chooseLanguageText)
	case session.AwaitingUpload:
		b.reply(logger, chatID, awaitingUploadText)
	case session.Processing:
		b.reply(logger, chatID, busyText)
	default:
		b.reply(logger, chatID, startText)
	}
}

func (b *Bot) handleCommand(ctx context.Context, logger *slog.Logger, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	switch message.Command() {
	case "start":
		b.reply(logger, chatID, startText)
	case "help":
		b.reply(logger, chatID, helpText)
	case "convert":
		b.handleConvert(ctx, logger, chatID)
	case "cancel":
		b.handleCancel(ctx, logger, chatID)
	default:
		b.reply(logger, chatID, "Unknown command. Try /help.")
	}
}

func (b *Bot) handleConvert(ctx context.Context, logger *slog.Logger, chatID int64) {
	if _, err := b.sessions.Apply(chatID, session.ConvertRequested{}); err != nil {
		state := b.sessions.Get(chatID)
		if state.Kind() == session.KindProcessing {
			b.reply(logger, chatID, busyText)
		} else {
			// Mid-selection: restart the language prompt.
			b.sessions.Reset(chatID)
			if _, err := b.sessions.Apply(chatID, session.ConvertRequested{}); err != nil {
				logger.Warn("failed to restart conversation", logging.Error(err))
				return
			}
			b.sendLanguageKeyboard(logger, chatID)
		}
		return
	}
	b.sendLanguageKeyboard(logger, chatID)
}

func (b *Bot) handleCancel(ctx context.Context, logger *slog.Logger, chatID int64) {
	state := b.sessions.Get(chatID)
	if processing, ok := state.(session.Processing); ok {
		b.abandonJob(ctx, logger, processing.JobID)
	}
	if _, err := b.sessions.Apply(chatID, session.CancelRequested{}); err != nil {
		b.reply(logger, chatID, nothingToCancelText)
		return
	}
	b.reply(logger, chatID, cancelledText)
}

// abandonJob removes a queued job the user no longer wants. Jobs already in
// flight finish their current stage; their results are discarded on delivery.
func (b *Bot) abandonJob(ctx context.Context, logger *slog.Logger, jobID int64) {
	job, err := b.store.GetByID(ctx, jobID)
	if err != nil || job == nil {
		return
	}
	if job.Status != queue.StatusPending {
		return
	}
	if _, err := b.store.Remove(ctx, jobID); err != nil {
		logger.Warn("failed to remove cancelled job", logging.Error(err))
		return
	}
	for _, path := range job.TempArtifacts() {
		b.removeQuiet(logger, path)
	}
}

func (b *Bot) sendLanguageKeyboard(logger *slog.Logger, chatID int64) {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(b.cfg.Subtitles.Languages))
	for _, code := range b.cfg.Subtitles.Languages {
		label := language.DisplayName(code)
		if label == "" {
			label = code
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, languageCallbackPrefix+code),
		))
	}

	msg := tgbotapi.NewMessage(chatID, chooseLanguageText)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.api.Send(msg); err != nil {
		logger.Warn("failed to send language keyboard", logging.Error(err))
	}
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID
	logger := logging.WithContext(ctx, b.logger).With(logging.Int64(logging.FieldChatID, chatID))

	// Ack the button press so the client stops its spinner.
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		logger.Debug("failed to ack callback", logging.Error(err))
	}

	if !strings.HasPrefix(callback.Data, languageCallbackPrefix) {
		return
	}
	code := language.Normalize(strings.TrimPrefix(callback.Data, languageCallbackPrefix))
	if code == "" || !b.languageAllowed(code) {
		b.reply(logger, chatID, chooseLanguageText)
		return
	}

	if _, err := b.sessions.Apply(chatID, session.LanguageChosen{Language: code}); err != nil {
		b.reply(logger, chatID, notExpectingText)
		return
	}

	name := language.DisplayName(code)
	if name == "" {
		name = code
	}
	edit := tgbotapi.NewEditMessageText(chatID, callback.Message.MessageID,
		fmt.Sprintf("Language: %s\n%s", name, awaitingUploadText))
	if _, err := b.api.Send(edit); err != nil {
		logger.Debug("failed to edit language prompt", logging.Error(err))
		b.reply(logger, chatID, awaitingUploadText)
	}
}

func (b *Bot) languageAllowed(code string) bool {
	for _, allowed := range b.cfg.Subtitles.Languages {
		if allowed == code {
			return true
		}
	}
	return false
}

// JobCompleted implements workflow.JobObserver. Delivery already messaged the
// chat; only the conversation state needs to advance.
func (b *Bot) JobCompleted(ctx context.Context, job *queue.Job) {
	if chatID, ok := b.sessions.ProcessingChat(job.ID); ok {
		if _, err := b.sessions.Apply(chatID, session.JobFinished{}); err != nil {
			b.sessions.Reset(chatID)
		}
	}
}

// JobFailed implements workflow.JobObserver.
func (b *Bot) JobFailed(ctx context.Context, job *queue.Job, message string) {
	logger := logging.WithContext(ctx, b.logger).With(logging.Int64(logging.FieldChatID, job.ChatID))

	text := "Sorry, something went wrong: " + message
	if job.ProgressMessageID != 0 {
		edit := tgbotapi.NewEditMessageText(job.ChatID, int(job.ProgressMessageID), text)
		if _, err := b.api.Send(edit); err != nil {
			b.reply(logger, job.ChatID, text)
		}
	} else {
		b.reply(logger, job.ChatID, text)
	}

	if b.notifier != nil {
		if err := b.notifier.Publish(ctx, notifications.EventError, notifications.Payload{
			"context": fmt.Sprintf("job #%d", job.ID),
			"error":   message,
		}); err != nil {
			logger.Debug("failure notification failed", logging.Error(err))
		}
	}

	if chatID, ok := b.sessions.ProcessingChat(job.ID); ok {
		if _, err := b.sessions.Apply(chatID, session.JobFinished{}); err != nil {
			b.sessions.Reset(chatID)
		}
	}
}
