package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SendMessage implements deliver.Transport.
func (b *Bot) SendMessage(_ context.Context, chatID int64, text string) (int64, error) {
	sent, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return 0, fmt.Errorf("send message: %w", err)
	}
	return int64(sent.MessageID), nil
}

// EditMessage implements deliver.Transport.
func (b *Bot) EditMessage(_ context.Context, chatID, messageID int64, text string) error {
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, int(messageID), text)); err != nil {
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

// DeleteMessage implements deliver.Transport.
func (b *Bot) DeleteMessage(_ context.Context, chatID, messageID int64) error {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, int(messageID))); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// SendDocument implements deliver.Transport.
func (b *Bot) SendDocument(_ context.Context, chatID int64, path, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = caption
	if _, err := b.api.Send(doc); err != nil {
		return fmt.Errorf("send document: %w", err)
	}
	return nil
}
