package bot

import (
	"fmt"
	"strings"
	"time"

	"shownotify/internal/idset"
	"shownotify/internal/model"
)

// FormatEpisodeNotification formats one announced episode as a message.
func FormatEpisodeNotification(ep model.Episode, showName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]\n\n", showName)
	if ep.Code != "" {
		b.WriteString(ep.Code)
		if ep.Title != "" {
			b.WriteString(" — ")
		}
	}
	b.WriteString(ep.Title)
	if ep.ReleaseDate != "" {
		fmt.Fprintf(&b, "\nReleased: %s", ep.ReleaseDate)
	}
	if ep.URL != "" {
		b.WriteString("\n\n")
		b.WriteString(ep.URL)
	}
	return b.String()
}

// FormatShowList formats the tracked shows for display.
func FormatShowList(shows []model.Show, muted idset.Set) string {
	if len(shows) == 0 {
		return "No tracked shows. Add shows in your tracker account."
	}
	var b strings.Builder
	b.WriteString("Tracked shows:\n")
	for _, s := range shows {
		fmt.Fprintf(&b, "\n#%d %s", s.ID, s.Name)
		switch {
		case s.Archived:
			b.WriteString(" [archived]")
		case muted.Contains(s.ID):
			b.WriteString(" [muted]")
		}
		if s.Remaining > 0 {
			fmt.Fprintf(&b, " — %d unseen", s.Remaining)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nUse /mute <id> to silence a show.")
	return b.String()
}

// FormatPassStats formats the outcome of one pass.
func FormatPassStats(stats *model.PassStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Checked %d show(s) in %s.\n", stats.ShowsChecked, stats.Duration.Round(time.Millisecond))
	fmt.Fprintf(&b, "In window: %d, visible: %d, announced: %d.", stats.InWindow, stats.Visible, stats.Announced)
	if stats.FetchFailures > 0 {
		fmt.Fprintf(&b, "\n%d show(s) could not be fetched.", stats.FetchFailures)
	}
	return b.String()
}
