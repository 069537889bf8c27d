package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"shownotify/internal/storage"
)

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	data := cb.Data
	chatID := cb.Message.Chat.ID

	parts := strings.SplitN(data, ":", 2)
	if len(parts) != 2 {
		b.ackCallback(cb.ID, "")
		return
	}

	action := parts[0]
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		b.ackCallback(cb.ID, "")
		return
	}

	b.log.Info("callback",
		"action", action,
		"id", id,
		"chat_id", chatID,
		"user_id", cb.From.ID,
		"username", cb.From.UserName,
	)

	switch action {
	case "discard":
		b.handleDiscard(ctx, cb, id)
	default:
		b.ackCallback(cb.ID, "")
	}
}

// handleDiscard adds the episode to the discarded set. The add is
// idempotent, so tapping a stale button twice is harmless. The next
// pass drops the episode from the visible set.
func (b *Bot) handleDiscard(ctx context.Context, cb *tgbotapi.CallbackQuery, episodeID int64) {
	if err := b.store.AddToIDSet(ctx, storage.KeyDiscardedEpisodes, []int64{episodeID}); err != nil {
		b.log.Error("discard episode", "episode_id", episodeID, "error", err)
		b.ackCallback(cb.ID, "Failed to dismiss, try again.")
		return
	}

	b.ackCallback(cb.ID, "Dismissed.")

	// Drop the button so the message reads as handled.
	edit := tgbotapi.NewEditMessageReplyMarkup(cb.Message.Chat.ID, cb.Message.MessageID,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})
	if _, err := b.api.Send(edit); err != nil {
		b.log.Debug("clear dismiss button", "error", err)
	}
}

func (b *Bot) ackCallback(callbackID, text string) {
	callback := tgbotapi.NewCallback(callbackID, text)
	if _, err := b.api.Send(callback); err != nil {
		b.log.Error("send callback ack", "error", err)
	}
}
