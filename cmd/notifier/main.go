package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"shownotify/internal/api"
	"shownotify/internal/bot"
	"shownotify/internal/config"
	"shownotify/internal/fetcher"
	"shownotify/internal/rss"
	"shownotify/internal/scheduler"
	"shownotify/internal/source"
	"shownotify/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	src := newSource(cfg)

	b, err := bot.New(cfg.TelegramBotToken, store, src, cfg, log)
	if err != nil {
		log.Error("create bot", "error", err)
		os.Exit(1)
	}

	f := fetcher.New(src, fetcher.Config{
		Concurrency:    cfg.FetchConcurrency,
		MaxAttempts:    cfg.FetchMaxAttempts,
		RetryBaseDelay: cfg.FetchRetryBase,
	}, log)

	sched := scheduler.New(store, src, f, b, log)
	sched.SetTickInterval(cfg.TickInterval)
	sched.SetWindowLength(cfg.WindowLength)
	b.SetPassRunner(sched)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting notifier", "source", cfg.SourceKind)

	go sched.Run(ctx)

	b.Run(ctx)

	log.Info("notifier stopped")
}

func newSource(cfg *config.Config) source.Source {
	client := api.DefaultHTTPClient()
	if cfg.SourceKind == config.SourceRSS {
		return rss.New(client, cfg.RSSFeeds)
	}
	return api.New(client, cfg.APIBaseURL, cfg.APIToken)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
