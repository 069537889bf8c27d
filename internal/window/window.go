// Package window classifies episode release dates against the trailing
// notification window.
package window

import (
	"time"

	"shownotify/internal/model"
)

// DefaultLength is the default trailing window for "new" episodes.
const DefaultLength = 7 * 24 * time.Hour

// dateOnly is the layout for bare release dates, parsed at local midnight.
const dateOnly = "2006-01-02"

// layouts tried, in order, for release dates that carry a time component.
var layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
}

// ReleaseInstant parses a release-date string. A bare YYYY-MM-DD date is
// interpreted as local midnight. The second return is false when the
// string is empty or unparseable.
func ReleaseInstant(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if len(s) == len(dateOnly) {
		if t, err := time.ParseInLocation(dateOnly, s, time.Local); err == nil {
			return t, true
		}
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Classify places a release-date string relative to the window ending at
// now. Check order matters: invalid first, then future, then too-old.
// Both window boundaries are inclusive, so a release exactly at now or
// exactly at now-length is in-window.
func Classify(now time.Time, length time.Duration, releaseDate string) model.Classification {
	release, ok := ReleaseInstant(releaseDate)
	if !ok {
		return model.ClassInvalid
	}
	if release.After(now) {
		return model.ClassFuture
	}
	if release.Before(now.Add(-length)) {
		return model.ClassTooOld
	}
	return model.ClassInWindow
}

// Counts holds per-classification totals for one pass, kept purely for
// diagnostics.
type Counts struct {
	Invalid  int
	Future   int
	TooOld   int
	InWindow int
}

// Partition splits episodes into the in-window subset and diagnostic
// counts for the rest. Input order is preserved.
func Partition(now time.Time, length time.Duration, episodes []model.Episode) ([]model.Episode, Counts) {
	var counts Counts
	inWindow := make([]model.Episode, 0, len(episodes))
	for _, ep := range episodes {
		switch Classify(now, length, ep.ReleaseDate) {
		case model.ClassInvalid:
			counts.Invalid++
		case model.ClassFuture:
			counts.Future++
		case model.ClassTooOld:
			counts.TooOld++
		case model.ClassInWindow:
			counts.InWindow++
			inWindow = append(inWindow, ep)
		}
	}
	return inWindow, counts
}
