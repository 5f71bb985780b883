package bot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"subsmith/internal/config"
	"subsmith/internal/logging"
	"subsmith/internal/notifications"
	"subsmith/internal/queue"
	"subsmith/internal/session"
)

// API is the subset of the Telegram client the bot depends on. The concrete
// tgbotapi.BotAPI satisfies it; tests inject fakes.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot routes chat updates into the session state machine and the job queue.
type Bot struct {
	cfg      *config.Config
	store    *queue.Store
	sessions *session.Manager
	logger   *slog.Logger
	api      API
	notifier notifications.Service
	client   *http.Client

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New connects to the Telegram API with the configured token.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram api: %w", err)
	}
	return NewWithAPI(cfg, store, logger, api, notifications.NewService(cfg)), nil
}

// NewWithAPI allows injecting the Telegram client (used in tests).
func NewWithAPI(cfg *config.Config, store *queue.Store, logger *slog.Logger, api API, notifier notifications.Service) *Bot {
	botLogger := logger
	if botLogger != nil {
		botLogger = botLogger.With(logging.String(logging.FieldComponent, "bot"))
	}
	return &Bot{
		cfg:      cfg,
		store:    store,
		sessions: session.NewManager(),
		logger:   botLogger,
		api:      api,
		notifier: notifier,
		client:   &http.Client{},
	}
}

// Sessions exposes the conversation state manager.
func (b *Bot) Sessions() *session.Manager {
	return b.sessions
}

// Start begins consuming updates until the context is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return fmt.Errorf("bot already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.running = true
	b.wg.Add(1)
	b.mu.Unlock()

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.cfg.Telegram.PollTimeout
	updates := b.api.GetUpdatesChan(updateConfig)

	go b.run(runCtx, updates)
	return nil
}

// Stop halts update consumption and waits for in-flight handlers.
func (b *Bot) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	cancel := b.cancel
	b.running = false
	b.cancel = nil
	b.mu.Unlock()

	b.api.StopReceivingUpdates()
	cancel()
	b.wg.Wait()
}

func (b *Bot) run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	defer b.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate dispatches a single Telegram update.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}
