// Package scheduler runs reconciliation passes on a fixed tick and on
// demand.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"shownotify/internal/fetcher"
	"shownotify/internal/model"
	"shownotify/internal/reconcile"
	"shownotify/internal/source"
	"shownotify/internal/storage"
	"shownotify/internal/window"
)

// ErrPassRunning is returned when a pass is triggered while another is
// still in flight.
var ErrPassRunning = errors.New("reconciliation pass already running")

// Notifier receives the newly announced episodes.
type Notifier interface {
	NotifyEpisode(episode model.Episode, showName string)
}

// Scheduler owns the periodic reconciliation loop.
type Scheduler struct {
	store    storage.Storage
	src      source.Source
	fetcher  *fetcher.Fetcher
	notifier Notifier
	log      *slog.Logger

	tick      time.Duration
	windowLen time.Duration
	now       func() time.Time

	// passMu serializes passes; an overlapping trigger fails fast
	// instead of queueing.
	passMu sync.Mutex
}

// New creates a Scheduler with default tick and window length.
func New(store storage.Storage, src source.Source, f *fetcher.Fetcher, notifier Notifier, log *slog.Logger) *Scheduler {
	return &Scheduler{
		store:     store,
		src:       src,
		fetcher:   f,
		notifier:  notifier,
		log:       log,
		tick:      15 * time.Minute,
		windowLen: window.DefaultLength,
		now:       time.Now,
	}
}

// SetTickInterval overrides the default 15-minute pass interval.
func (s *Scheduler) SetTickInterval(d time.Duration) {
	s.tick = d
}

// SetWindowLength overrides the default 7-day notification window.
func (s *Scheduler) SetWindowLength(d time.Duration) {
	s.windowLen = d
}

// SetNow overrides the clock (useful for testing).
func (s *Scheduler) SetNow(now func() time.Time) {
	s.now = now
}

// Run starts the scheduler loop, blocking until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.runLogged(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runLogged(ctx)
		}
	}
}

func (s *Scheduler) runLogged(ctx context.Context) {
	stats, err := s.RunPass(ctx)
	if err != nil {
		if errors.Is(err, ErrPassRunning) {
			s.log.Debug("skipping tick, pass still running")
			return
		}
		s.log.Error("reconciliation pass", "error", err)
		return
	}
	s.log.Info("reconciliation pass done",
		"shows", stats.ShowsChecked,
		"fetch_failures", stats.FetchFailures,
		"in_window", stats.InWindow,
		"visible", stats.Visible,
		"announced", stats.Announced,
		"duration", stats.Duration,
	)
}

// RunPass performs one full fetch, window, reconcile, persist, notify
// cycle. Per-show fetch failures shrink the visible set for this pass
// but never fail it; only a systemic failure (state load, source
// listing, state persist) is returned as an error. Announcements fire
// only after the new state is committed.
func (s *Scheduler) RunPass(ctx context.Context) (*model.PassStats, error) {
	if !s.passMu.TryLock() {
		return nil, ErrPassRunning
	}
	defer s.passMu.Unlock()

	started := s.now()

	disabled, err := s.store.LoadIDSet(ctx, storage.KeyDisabledShows)
	if err != nil {
		return nil, fmt.Errorf("load disabled shows: %w", err)
	}
	pending, err := s.store.LoadIDSet(ctx, storage.KeyPendingEpisodes)
	if err != nil {
		return nil, fmt.Errorf("load pending episodes: %w", err)
	}
	discarded, err := s.store.LoadIDSet(ctx, storage.KeyDiscardedEpisodes)
	if err != nil {
		return nil, fmt.Errorf("load discarded episodes: %w", err)
	}

	shows, err := s.src.ListShows(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shows: %w", err)
	}

	names := make(map[int64]string, len(shows))
	for _, show := range shows {
		names[show.ID] = show.Name
	}
	if err := s.store.UpsertShowNames(ctx, names); err != nil {
		s.log.Error("refresh show name cache", "error", err)
	}

	results := s.fetcher.Fetch(ctx, shows)

	fetchFailures := 0
	var episodes []model.Episode
	for _, r := range results {
		if !r.OK {
			fetchFailures++
			continue
		}
		episodes = append(episodes, r.Episodes...)
	}

	inWindow, counts := window.Partition(s.now(), s.windowLen, episodes)
	s.log.Debug("window classification",
		"in_window", counts.InWindow,
		"too_old", counts.TooOld,
		"future", counts.Future,
		"invalid_date", counts.Invalid,
	)

	outcome := reconcile.Reconcile(inWindow, names, disabled, pending, discarded)

	err = s.store.SaveIDSets(ctx, map[string][]int64{
		storage.KeyPendingEpisodes:   outcome.NewPending,
		storage.KeyDiscardedEpisodes: outcome.NewDiscarded,
	})
	if err != nil {
		return nil, fmt.Errorf("persist reconciled state: %w", err)
	}

	for _, ep := range outcome.ToAnnounce {
		s.notifier.NotifyEpisode(ep, names[ep.ShowID])
	}

	stats := model.PassStats{
		StartedAt:     started,
		Duration:      s.now().Sub(started),
		ShowsChecked:  len(results),
		FetchFailures: fetchFailures,
		InWindow:      counts.InWindow,
		Visible:       len(outcome.Visible),
		Announced:     len(outcome.ToAnnounce),
	}
	if err := s.store.RecordPass(ctx, stats); err != nil {
		s.log.Error("record pass stats", "error", err)
	}
	return &stats, nil
}
