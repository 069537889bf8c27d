// Package bot implements the Telegram command interface and the
// notification sink for announced episodes.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"shownotify/internal/config"
	"shownotify/internal/model"
	"shownotify/internal/scheduler"
	"shownotify/internal/source"
	"shownotify/internal/storage"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// PassRunner triggers an on-demand reconciliation pass.
type PassRunner interface {
	RunPass(ctx context.Context) (*model.PassStats, error)
}

// Bot handles user commands, dismiss callbacks, and episode
// notifications for a single configured chat.
type Bot struct {
	api    telegramAPI
	store  storage.Storage
	src    source.Source
	cfg    *config.Config
	runner PassRunner
	log    *slog.Logger
}

// New creates a Bot with the given Telegram token, storage, source, and config.
func New(token string, store storage.Storage, src source.Source, cfg *config.Config, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	return &Bot{
		api:   api,
		store: store,
		src:   src,
		cfg:   cfg,
		log:   log,
	}, nil
}

// SetPassRunner wires the scheduler in after construction; the
// scheduler itself needs the bot as its notifier.
func (b *Bot) SetPassRunner(r PassRunner) {
	b.runner = r
}

// Run starts the bot's long-polling loop, blocking until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.CallbackQuery != nil {
				b.handleCallback(ctx, update.CallbackQuery)
				continue
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			if !b.cfg.IsUserAllowed(update.Message.From.ID) {
				b.reply(update.Message.Chat.ID, "Access denied.")
				continue
			}
			b.handleCommand(ctx, update.Message)
		}
	}
}

// NotifyEpisode announces one episode to the configured chat with a
// dismiss button. Fire-and-forget: a send failure is logged and never
// affects reconciliation state.
func (b *Bot) NotifyEpisode(ep model.Episode, showName string) {
	msg := tgbotapi.NewMessage(b.cfg.ChatID, FormatEpisodeNotification(ep, showName))
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Dismiss", fmt.Sprintf("discard:%d", ep.ID)),
		),
	)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send notification", "episode_id", ep.ID, "error", err)
	}
}

// SendMessage sends a text message to the given chat.
func (b *Bot) SendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.SendMessage(chatID, text)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())
	chatID := msg.Chat.ID

	b.log.Debug("command", "cmd", cmd, "args", args, "chat_id", chatID)

	switch cmd {
	case "start":
		b.handleStart(chatID)
	case "help":
		b.handleHelp(chatID)
	case "shows":
		b.handleShows(ctx, chatID)
	case "mute":
		b.handleMute(ctx, chatID, args)
	case "unmute":
		b.handleUnmute(ctx, chatID, args)
	case "check":
		b.handleCheck(ctx, chatID)
	case "status":
		b.handleStatus(ctx, chatID)
	case "discarded":
		b.handleDiscarded(ctx, chatID)
	case "cleardiscarded":
		b.handleClearDiscarded(ctx, chatID)
	default:
		b.reply(chatID, "Unknown command. Use /help for a list of commands.")
	}
}

func (b *Bot) runPass(ctx context.Context) (*model.PassStats, error) {
	if b.runner == nil {
		return nil, errors.New("pass runner not configured")
	}
	return b.runner.RunPass(ctx)
}

var _ scheduler.Notifier = (*Bot)(nil)
