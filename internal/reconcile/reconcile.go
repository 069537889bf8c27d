// Package reconcile computes the visible and to-announce episode sets
// from the in-window episodes and the persisted id-sets.
//
// The persisted sets are pruned to the current window on every pass, so
// they never grow unbounded and self-heal from stale entries. Running a
// pass twice with no external change announces nothing the second time,
// because the first pass's visible set becomes the second's pending set.
package reconcile

import (
	"sort"

	"shownotify/internal/idset"
	"shownotify/internal/model"
	"shownotify/internal/window"
)

// Outcome is the result of one reconciliation.
type Outcome struct {
	// Visible is the full set of episodes to display, sorted.
	Visible []model.Episode
	// ToAnnounce is the subset of Visible not pending from the last pass.
	ToAnnounce []model.Episode
	// NewPending and NewDiscarded replace the persisted sets.
	NewPending   idset.Set
	NewDiscarded idset.Set
}

// Reconcile derives the visible and to-announce sets.
//
// showNames supplies display names for the ordering; a missing entry
// sorts as the empty string.
func Reconcile(inWindow []model.Episode, showNames map[int64]string, disabled, pending, discarded idset.Set) Outcome {
	windowIDs := episodeIDs(inWindow)

	prunedPending := pending.Intersect(windowIDs)
	prunedDiscarded := discarded.Intersect(windowIDs)

	visible := make([]model.Episode, 0, len(inWindow))
	for _, ep := range inWindow {
		if disabled.Contains(ep.ShowID) {
			continue
		}
		if prunedDiscarded.Contains(ep.ID) {
			continue
		}
		visible = append(visible, ep)
	}
	sortEpisodes(visible, showNames)

	toAnnounce := make([]model.Episode, 0, len(visible))
	for _, ep := range visible {
		if !prunedPending.Contains(ep.ID) {
			toAnnounce = append(toAnnounce, ep)
		}
	}

	return Outcome{
		Visible:      visible,
		ToAnnounce:   toAnnounce,
		NewPending:   episodeIDs(visible),
		NewDiscarded: prunedDiscarded,
	}
}

func episodeIDs(episodes []model.Episode) idset.Set {
	ids := make([]int64, 0, len(episodes))
	for _, ep := range episodes {
		ids = append(ids, ep.ID)
	}
	return idset.Normalize(ids)
}

// sortEpisodes orders by release instant ascending with unparseable
// dates last, then show name, then id. The id tie-break makes the order
// a strict total order.
func sortEpisodes(episodes []model.Episode, showNames map[int64]string) {
	type key struct {
		instant  int64
		hasDate  bool
		showName string
	}
	keys := make(map[int64]key, len(episodes))
	for _, ep := range episodes {
		k := key{showName: showNames[ep.ShowID]}
		if t, ok := window.ReleaseInstant(ep.ReleaseDate); ok {
			k.instant = t.UnixNano()
			k.hasDate = true
		}
		keys[ep.ID] = k
	}

	sort.Slice(episodes, func(i, j int) bool {
		a, b := keys[episodes[i].ID], keys[episodes[j].ID]
		if a.hasDate != b.hasDate {
			return a.hasDate
		}
		if a.hasDate && a.instant != b.instant {
			return a.instant < b.instant
		}
		if a.showName != b.showName {
			return a.showName < b.showName
		}
		return episodes[i].ID < episodes[j].ID
	})
}
