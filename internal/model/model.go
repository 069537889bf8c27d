// Package model defines the domain types used across the application.
package model

import "time"

// Show represents a tracked show as reported by the episode source.
// Shows are owned by the source system and are read-only here.
type Show struct {
	ID        int64
	Name      string
	Remaining int
	Archived  bool
}

// Episode represents a single released episode of a tracked show.
// Episodes are re-fetched fresh on every reconciliation pass; only
// their ids are ever persisted locally.
type Episode struct {
	ID          int64
	ShowID      int64
	Code        string
	Title       string
	ReleaseDate string
	URL         string
}

// Classification is the window classification of a fetched episode.
type Classification int

// Window classifications, in check order.
const (
	ClassInvalid Classification = iota
	ClassFuture
	ClassTooOld
	ClassInWindow
)

func (c Classification) String() string {
	switch c {
	case ClassInvalid:
		return "invalid-date"
	case ClassFuture:
		return "future"
	case ClassTooOld:
		return "too-old"
	case ClassInWindow:
		return "in-window"
	}
	return "unknown"
}

// PassStats summarizes one reconciliation pass for diagnostics.
type PassStats struct {
	StartedAt     time.Time
	Duration      time.Duration
	ShowsChecked  int
	FetchFailures int
	InWindow      int
	Visible       int
	Announced     int
}
