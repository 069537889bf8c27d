// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Source kinds.
const (
	SourceAPI = "api"
	SourceRSS = "rss"
)

// Config holds the application configuration.
type Config struct {
	TelegramBotToken string
	ChatID           int64
	DatabasePath     string
	LogLevel         string
	AllowedUsers     []int64

	SourceKind string
	APIBaseURL string
	APIToken   string
	RSSFeeds   []string

	FetchConcurrency int
	FetchMaxAttempts int
	FetchRetryBase   time.Duration
	WindowLength     time.Duration
	TickInterval     time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	chatID, err := intEnv("CHAT_ID", 0)
	if err != nil {
		return nil, err
	}
	if chatID == 0 {
		return nil, fmt.Errorf("CHAT_ID is required")
	}

	cfg := &Config{
		TelegramBotToken: token,
		ChatID:           chatID,
		DatabasePath:     envOrDefault("DATABASE_PATH", "./data/shownotify.db"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		SourceKind:       envOrDefault("SOURCE", SourceAPI),
	}

	switch cfg.SourceKind {
	case SourceAPI:
		cfg.APIBaseURL = os.Getenv("API_BASE_URL")
		if cfg.APIBaseURL == "" {
			return nil, fmt.Errorf("API_BASE_URL is required when SOURCE=api")
		}
		cfg.APIToken = os.Getenv("API_TOKEN")
	case SourceRSS:
		for _, s := range strings.Split(os.Getenv("RSS_FEEDS"), ",") {
			if s = strings.TrimSpace(s); s != "" {
				cfg.RSSFeeds = append(cfg.RSSFeeds, s)
			}
		}
		if len(cfg.RSSFeeds) == 0 {
			return nil, fmt.Errorf("RSS_FEEDS is required when SOURCE=rss")
		}
	default:
		return nil, fmt.Errorf("invalid SOURCE %q, use: api, rss", cfg.SourceKind)
	}

	if raw := os.Getenv("ALLOWED_USERS"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			uid, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid user ID %q in ALLOWED_USERS: %w", s, err)
			}
			cfg.AllowedUsers = append(cfg.AllowedUsers, uid)
		}
	}

	concurrency, err := intEnv("FETCH_CONCURRENCY", 5)
	if err != nil {
		return nil, err
	}
	attempts, err := intEnv("FETCH_MAX_ATTEMPTS", 2)
	if err != nil {
		return nil, err
	}
	retryBaseMs, err := intEnv("FETCH_RETRY_BASE_MS", 500)
	if err != nil {
		return nil, err
	}
	windowDays, err := intEnv("WINDOW_DAYS", 7)
	if err != nil {
		return nil, err
	}
	tickMinutes, err := intEnv("TICK_MINUTES", 15)
	if err != nil {
		return nil, err
	}
	if windowDays < 1 {
		return nil, fmt.Errorf("WINDOW_DAYS must be at least 1")
	}
	if tickMinutes < 1 || tickMinutes > 1440 {
		return nil, fmt.Errorf("TICK_MINUTES must be between 1 and 1440")
	}

	cfg.FetchConcurrency = int(concurrency)
	cfg.FetchMaxAttempts = int(attempts)
	cfg.FetchRetryBase = time.Duration(retryBaseMs) * time.Millisecond
	cfg.WindowLength = time.Duration(windowDays) * 24 * time.Hour
	cfg.TickInterval = time.Duration(tickMinutes) * time.Minute

	return cfg, nil
}

// IsUserAllowed checks whether a user ID is in the allow list.
// Returns true if the allow list is empty (all users permitted).
func (c *Config) IsUserAllowed(userID int64) bool {
	if len(c.AllowedUsers) == 0 {
		return true
	}
	for _, id := range c.AllowedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}
