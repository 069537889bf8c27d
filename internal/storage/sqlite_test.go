package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"shownotify/internal/idset"
	"shownotify/internal/model"
)

func newTestDB(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestIDSetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	tests := []struct {
		name string
		key  string
		save []int64
		want idset.Set
	}{
		{
			name: "empty set",
			key:  KeyPendingEpisodes,
			save: nil,
			want: idset.Set{},
		},
		{
			name: "normalized on save",
			key:  KeyDiscardedEpisodes,
			save: []int64{5, 3, 5, -1, 0, 9},
			want: idset.Set{3, 5, 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.SaveIDSet(ctx, tt.key, tt.save); err != nil {
				t.Fatalf("save: %v", err)
			}
			got, err := s.LoadIDSet(ctx, tt.key)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("id set mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSaveIDSetReplaces(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	if err := s.SaveIDSet(ctx, KeyPendingEpisodes, []int64{1, 2, 3}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveIDSet(ctx, KeyPendingEpisodes, []int64{4}); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.LoadIDSet(ctx, KeyPendingEpisodes)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(idset.Set{4}, got); diff != "" {
		t.Errorf("id set mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveIDSetsWritesBothKeys(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	err := s.SaveIDSets(ctx, map[string][]int64{
		KeyPendingEpisodes:   {1, 2},
		KeyDiscardedEpisodes: {3},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	pending, _ := s.LoadIDSet(ctx, KeyPendingEpisodes)
	discarded, _ := s.LoadIDSet(ctx, KeyDiscardedEpisodes)
	if diff := cmp.Diff(idset.Set{1, 2}, pending); diff != "" {
		t.Errorf("pending mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(idset.Set{3}, discarded); diff != "" {
		t.Errorf("discarded mismatch (-want +got):\n%s", diff)
	}
}

func TestAddToIDSetIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	for i := 0; i < 2; i++ {
		if err := s.AddToIDSet(ctx, KeyDiscardedEpisodes, []int64{7, 8}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := s.AddToIDSet(ctx, KeyDiscardedEpisodes, []int64{8, 9}); err != nil {
		t.Fatalf("add: %v", err)
	}

	got, err := s.LoadIDSet(ctx, KeyDiscardedEpisodes)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(idset.Set{7, 8, 9}, got); diff != "" {
		t.Errorf("id set mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveFromIDSet(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	if err := s.SaveIDSet(ctx, KeyDisabledShows, []int64{1, 2, 3}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.RemoveFromIDSet(ctx, KeyDisabledShows, []int64{2, 99}); err != nil {
		t.Fatalf("remove: %v", err)
	}

	got, err := s.LoadIDSet(ctx, KeyDisabledShows)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(idset.Set{1, 3}, got); diff != "" {
		t.Errorf("id set mismatch (-want +got):\n%s", diff)
	}
}

func TestIDSetKeysIsolated(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	if err := s.SaveIDSet(ctx, KeyPendingEpisodes, []int64{1}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveIDSet(ctx, KeyDiscardedEpisodes, []int64{2}); err != nil {
		t.Fatalf("save: %v", err)
	}

	pending, _ := s.LoadIDSet(ctx, KeyPendingEpisodes)
	if diff := cmp.Diff(idset.Set{1}, pending); diff != "" {
		t.Errorf("keys leaked across sets (-want +got):\n%s", diff)
	}
}

func TestShowNames(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	if err := s.UpsertShowNames(ctx, map[int64]string{1: "Alpha", 2: "Beta"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.UpsertShowNames(ctx, map[int64]string{2: "Beta (renamed)", 3: "Gamma"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.ListShowNames(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := map[int64]string{1: "Alpha", 2: "Beta (renamed)", 3: "Gamma"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestPassHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	got, err := s.LastPass(ctx)
	if err != nil {
		t.Fatalf("last pass: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil before any pass, got %+v", got)
	}

	first := model.PassStats{
		StartedAt:    time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC),
		Duration:     1200 * time.Millisecond,
		ShowsChecked: 4,
		InWindow:     2,
		Visible:      2,
		Announced:    1,
	}
	second := model.PassStats{
		StartedAt:     time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC),
		Duration:      800 * time.Millisecond,
		ShowsChecked:  4,
		FetchFailures: 1,
		InWindow:      2,
		Visible:       2,
	}
	for _, p := range []model.PassStats{first, second} {
		if err := s.RecordPass(ctx, p); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	got, err = s.LastPass(ctx)
	if err != nil {
		t.Fatalf("last pass: %v", err)
	}
	if diff := cmp.Diff(&second, got); diff != "" {
		t.Errorf("last pass mismatch (-want +got):\n%s", diff)
	}
}
