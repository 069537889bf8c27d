package bot

import (
	"context"
	"errors"
	"fmt"

	"shownotify/internal/scheduler"
	"shownotify/internal/storage"
)

func (b *Bot) handleStart(chatID int64) {
	b.reply(chatID, `Welcome to Show Notify!

You get a message here whenever a tracked show releases a new episode.
Tap "Dismiss" under a notification to stop seeing that episode.

Quick start:
1. /shows — list your tracked shows
2. /mute <id> — silence a show
3. /check — run a check right now

Use /help for the full command reference.`)
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `Shows:
/shows — list tracked shows with unseen counts
/mute <id> — disable notifications for a show
/unmute <id> — re-enable notifications for a show

Checks:
/check — run a reconciliation pass now
/status — stats of the last pass

Dismissed episodes:
/discarded — count of dismissed episodes
/cleardiscarded — forget all dismissals

Dismiss individual episodes with the button under each notification.`)
}

func (b *Bot) handleShows(ctx context.Context, chatID int64) {
	shows, err := b.src.ListShows(ctx)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to list shows: %v", err))
		return
	}

	muted, err := b.store.LoadIDSet(ctx, storage.KeyDisabledShows)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}

	b.reply(chatID, FormatShowList(shows, muted))
}

func (b *Bot) handleMute(ctx context.Context, chatID int64, args string) {
	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "Usage: /mute <show_id>")
		return
	}

	if err := b.store.AddToIDSet(ctx, storage.KeyDisabledShows, []int64{id}); err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to mute show: %v", err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Show #%d muted. Use /unmute %d to undo.", id, id))
}

func (b *Bot) handleUnmute(ctx context.Context, chatID int64, args string) {
	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "Usage: /unmute <show_id>")
		return
	}

	if err := b.store.RemoveFromIDSet(ctx, storage.KeyDisabledShows, []int64{id}); err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to unmute show: %v", err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Show #%d unmuted.", id))
}

func (b *Bot) handleCheck(ctx context.Context, chatID int64) {
	stats, err := b.runPass(ctx)
	if errors.Is(err, scheduler.ErrPassRunning) {
		b.reply(chatID, "A check is already running.")
		return
	}
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Check failed: %v", err))
		return
	}
	b.reply(chatID, FormatPassStats(stats))
}

func (b *Bot) handleStatus(ctx context.Context, chatID int64) {
	stats, err := b.store.LastPass(ctx)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	if stats == nil {
		b.reply(chatID, "No check has run yet. Use /check to run one now.")
		return
	}
	b.reply(chatID, fmt.Sprintf("Last check at %s\n%s",
		stats.StartedAt.Format("2006-01-02 15:04 UTC"), FormatPassStats(stats)))
}

func (b *Bot) handleDiscarded(ctx context.Context, chatID int64) {
	discarded, err := b.store.LoadIDSet(ctx, storage.KeyDiscardedEpisodes)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	if len(discarded) == 0 {
		b.reply(chatID, "No dismissed episodes.")
		return
	}
	b.reply(chatID, fmt.Sprintf("%d dismissed episode(s) in the current window. Use /cleardiscarded to forget them.", len(discarded)))
}

func (b *Bot) handleClearDiscarded(ctx context.Context, chatID int64) {
	if err := b.store.SaveIDSet(ctx, storage.KeyDiscardedEpisodes, nil); err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.reply(chatID, "Dismissed episodes cleared. They may be announced again on the next check.")
}
