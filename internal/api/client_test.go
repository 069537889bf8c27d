package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/h2non/gock"

	"shownotify/internal/model"
	"shownotify/internal/source"
)

const baseURL = "https://tracker.example.com"

func newTestClient(t *testing.T) *Client {
	t.Helper()
	httpClient := &http.Client{}
	gock.InterceptClient(httpClient)
	t.Cleanup(gock.Off)
	return New(httpClient, baseURL, "test-token")
}

func TestListShows(t *testing.T) {
	c := newTestClient(t)

	gock.New(baseURL).
		Get("/shows").
		MatchHeader("Authorization", "Bearer test-token").
		Reply(200).
		JSON(map[string]any{
			"shows": []map[string]any{
				{"id": 1, "name": "Alpha", "remaining": 3, "archived": false},
				{"id": 2, "name": "Beta", "remaining": 0, "archived": true},
			},
		})

	got, err := c.ListShows(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []model.Show{
		{ID: 1, Name: "Alpha", Remaining: 3},
		{ID: 2, Name: "Beta", Archived: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("shows mismatch (-want +got):\n%s", diff)
	}
}

func TestUnseenEpisodes(t *testing.T) {
	c := newTestClient(t)

	gock.New(baseURL).
		Get("/shows/1/episodes/unseen").
		Reply(200).
		JSON(map[string]any{
			"episodes": []map[string]any{
				{"id": 101, "show_id": 1, "code": "S01E01", "title": "Pilot", "date": "2024-01-08", "url": "https://tracker.example.com/e/101"},
				{"id": 102, "code": "S01E02", "title": "Two", "date": "2024-01-09"},
			},
		})

	got, err := c.UnseenEpisodes(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []model.Episode{
		{ID: 101, ShowID: 1, Code: "S01E01", Title: "Pilot", ReleaseDate: "2024-01-08", URL: "https://tracker.example.com/e/101"},
		// show_id omitted in the payload falls back to the requested show.
		{ID: 102, ShowID: 1, Code: "S01E02", Title: "Two", ReleaseDate: "2024-01-09"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("episodes mismatch (-want +got):\n%s", diff)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantKind source.ErrorKind
	}{
		{name: "rate limited", status: 429, wantKind: source.KindRateLimited},
		{name: "gateway timeout", status: 504, wantKind: source.KindTimeout},
		{name: "server error", status: 500, wantKind: source.KindNetwork},
		{name: "not found", status: 404, wantKind: source.KindOther},
		{name: "unauthorized", status: 401, wantKind: source.KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t)

			gock.New(baseURL).
				Get("/shows").
				Reply(tt.status)

			_, err := c.ListShows(context.Background())
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var se *source.Error
			if !errors.As(err, &se) {
				t.Fatalf("expected *source.Error, got %T", err)
			}
			if se.Kind != tt.wantKind {
				t.Errorf("kind = %v, want %v", se.Kind, tt.wantKind)
			}

			wantRetryable := tt.wantKind != source.KindOther
			if got := source.Retryable(err); got != wantRetryable {
				t.Errorf("Retryable = %v, want %v", got, wantRetryable)
			}
		})
	}
}

func TestMalformedResponseIsNotRetryable(t *testing.T) {
	c := newTestClient(t)

	gock.New(baseURL).
		Get("/shows").
		Reply(200).
		BodyString("not json")

	_, err := c.ListShows(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if source.Retryable(err) {
		t.Error("decode failure should not be retryable")
	}
}
