package window

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"shownotify/internal/model"
)

var now = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		releaseDate string
		want        model.Classification
	}{
		{
			name:        "empty string is invalid",
			releaseDate: "",
			want:        model.ClassInvalid,
		},
		{
			name:        "garbage is invalid",
			releaseDate: "not a date",
			want:        model.ClassInvalid,
		},
		{
			name:        "malformed date-only is invalid",
			releaseDate: "2024-13-99",
			want:        model.ClassInvalid,
		},
		{
			name:        "tomorrow is future",
			releaseDate: now.Add(24 * time.Hour).Format(time.RFC3339),
			want:        model.ClassFuture,
		},
		{
			name:        "ten days ago is too old",
			releaseDate: now.Add(-10 * 24 * time.Hour).Format(time.RFC3339),
			want:        model.ClassTooOld,
		},
		{
			name:        "three days ago is in window",
			releaseDate: now.Add(-3 * 24 * time.Hour).Format(time.RFC3339),
			want:        model.ClassInWindow,
		},
		{
			name:        "exactly now is in window",
			releaseDate: now.Format(time.RFC3339),
			want:        model.ClassInWindow,
		},
		{
			name:        "exactly window lower bound is in window",
			releaseDate: now.Add(-DefaultLength).Format(time.RFC3339),
			want:        model.ClassInWindow,
		},
		{
			name:        "one second past lower bound is too old",
			releaseDate: now.Add(-DefaultLength - time.Second).Format(time.RFC3339),
			want:        model.ClassTooOld,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(now, DefaultLength, tt.releaseDate)
			if got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.releaseDate, got, tt.want)
			}
		})
	}
}

func TestClassifyDateOnlyUsesLocalMidnight(t *testing.T) {
	// A bare date parses at local midnight, so "today" relative to a
	// local-time now is never in the future.
	localNow := time.Date(2024, 1, 10, 8, 0, 0, 0, time.Local)
	got := Classify(localNow, DefaultLength, "2024-01-10")
	if got != model.ClassInWindow {
		t.Errorf("Classify(today) = %v, want in-window", got)
	}
}

func TestReleaseInstant(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   time.Time
		wantOK bool
	}{
		{
			name:   "date only at local midnight",
			in:     "2024-01-05",
			want:   time.Date(2024, 1, 5, 0, 0, 0, 0, time.Local),
			wantOK: true,
		},
		{
			name:   "rfc3339",
			in:     "2024-01-05T17:30:00Z",
			want:   time.Date(2024, 1, 5, 17, 30, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "rfc1123z",
			in:     "Fri, 05 Jan 2024 17:30:00 +0000",
			want:   time.Date(2024, 1, 5, 17, 30, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "empty",
			in:     "",
			wantOK: false,
		},
		{
			name:   "unparseable",
			in:     "soon(tm)",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ReleaseInstant(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("instant = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPartition(t *testing.T) {
	episodes := []model.Episode{
		{ID: 1, ReleaseDate: now.Add(-2 * 24 * time.Hour).Format(time.RFC3339)},
		{ID: 2, ReleaseDate: now.Add(-10 * 24 * time.Hour).Format(time.RFC3339)},
		{ID: 3, ReleaseDate: ""},
		{ID: 4, ReleaseDate: now.Add(48 * time.Hour).Format(time.RFC3339)},
		{ID: 5, ReleaseDate: now.Add(-1 * 24 * time.Hour).Format(time.RFC3339)},
	}

	inWindow, counts := Partition(now, DefaultLength, episodes)

	var gotIDs []int64
	for _, ep := range inWindow {
		gotIDs = append(gotIDs, ep.ID)
	}
	if diff := cmp.Diff([]int64{1, 5}, gotIDs); diff != "" {
		t.Errorf("in-window ids mismatch (-want +got):\n%s", diff)
	}

	wantCounts := Counts{Invalid: 1, Future: 1, TooOld: 1, InWindow: 2}
	if diff := cmp.Diff(wantCounts, counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
}
