// Package fetcher retrieves unseen episodes per show with bounded
// concurrency and retry on transient transport failures.
package fetcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"shownotify/internal/model"
	"shownotify/internal/source"
)

// Tunable defaults.
const (
	DefaultConcurrency    = 5
	DefaultMaxAttempts    = 2
	DefaultRetryBaseDelay = 500 * time.Millisecond
)

// Result is the per-show outcome of a fetch batch. A show whose fetch
// failed has OK false and no episodes; it never aborts the batch.
type Result struct {
	Show     model.Show
	Episodes []model.Episode
	OK       bool
}

// Config holds fetcher tunables. Zero fields fall back to defaults.
type Config struct {
	Concurrency    int
	MaxAttempts    int
	RetryBaseDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = DefaultRetryBaseDelay
	}
	return c
}

// Fetcher fetches unseen episodes from a Source.
type Fetcher struct {
	src source.Source
	cfg Config
	log *slog.Logger
}

// New creates a Fetcher over src.
func New(src source.Source, cfg Config, log *slog.Logger) *Fetcher {
	return &Fetcher{src: src, cfg: cfg.withDefaults(), log: log}
}

// Eligible returns the shows worth fetching: not archived and with a
// positive unseen-count hint. Filtering happens before any request so
// archived shows cost nothing.
func Eligible(shows []model.Show) []model.Show {
	out := make([]model.Show, 0, len(shows))
	for _, s := range shows {
		if s.Archived || s.Remaining <= 0 {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Fetch retrieves unseen episodes for every eligible show. At most
// Concurrency requests are in flight at once; the result slice index
// matches the eligible-show order regardless of completion order.
// Fetch never fails as a whole: per-show failures are captured in the
// corresponding Result.
func (f *Fetcher) Fetch(ctx context.Context, shows []model.Show) []Result {
	eligible := Eligible(shows)
	if len(eligible) == 0 {
		return nil
	}

	results := make([]Result, len(eligible))

	var g errgroup.Group
	g.SetLimit(min(f.cfg.Concurrency, len(eligible)))
	for i, show := range eligible {
		i, show := i, show
		g.Go(func() error {
			results[i] = f.fetchShow(ctx, show)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (f *Fetcher) fetchShow(ctx context.Context, show model.Show) Result {
	var episodes []model.Episode

	err := retry.Do(ctx, f.backoff(), func(ctx context.Context) error {
		eps, err := f.src.UnseenEpisodes(ctx, show.ID)
		if err != nil {
			if source.Retryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		episodes = eps
		return nil
	})
	if err != nil {
		f.log.Error("fetch unseen episodes", "show_id", show.ID, "name", show.Name, "error", err)
		return Result{Show: show}
	}

	return Result{Show: show, Episodes: episodes, OK: true}
}

// backoff builds a fresh linear backoff: baseDelay times the failed
// attempt number, capped at MaxAttempts total tries.
func (f *Fetcher) backoff() retry.Backoff {
	attempt := 0
	linear := retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		return f.cfg.RetryBaseDelay * time.Duration(attempt), false
	})
	return retry.WithMaxRetries(uint64(f.cfg.MaxAttempts-1), linear)
}
