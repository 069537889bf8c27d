// Package rss implements an RSS-backed episode source.
//
// Each configured feed URL is exposed as one show and every feed entry
// as one episode, so installations without a tracker account still get
// windowed new-episode notifications. Entry ids are hashed into the
// positive int64 id space the reconciler works in.
package rss

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"shownotify/internal/model"
	"shownotify/internal/source"
)

const maxBodySize = 5 * 1024 * 1024

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Source serves shows and episodes backed by a fixed list of feeds.
type Source struct {
	client HTTPClient
	urls   []string
}

// New creates a Source over the given feed URLs.
func New(client HTTPClient, urls []string) *Source {
	return &Source{client: client, urls: urls}
}

// ListShows fetches each configured feed and reports it as a show. A
// feed that cannot be fetched is listed under its URL so a later
// UnseenEpisodes call surfaces the failure to the fetcher's retry path.
func (s *Source) ListShows(ctx context.Context) ([]model.Show, error) {
	shows := make([]model.Show, 0, len(s.urls))
	for _, url := range s.urls {
		show := model.Show{
			ID:        HashID(url),
			Name:      url,
			Remaining: 1,
		}
		if feed, err := s.fetch(ctx, url); err == nil && feed.Title != "" {
			show.Name = feed.Title
		}
		shows = append(shows, show)
	}
	return shows, nil
}

// UnseenEpisodes returns every entry of the feed whose hashed URL
// matches showID. Window and pending reconciliation downstream decide
// what counts as new.
func (s *Source) UnseenEpisodes(ctx context.Context, showID int64) ([]model.Episode, error) {
	url, ok := s.urlFor(showID)
	if !ok {
		return nil, &source.Error{
			Kind: source.KindOther,
			Op:   "rss lookup",
			Err:  fmt.Errorf("no feed configured for show %d", showID),
		}
	}

	feed, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	episodes := make([]model.Episode, 0, len(feed.Items))
	for _, item := range feed.Items {
		episodes = append(episodes, model.Episode{
			ID:          HashID(entryGUID(item)),
			ShowID:      showID,
			Title:       item.Title,
			ReleaseDate: entryDate(item),
			URL:         item.Link,
		})
	}
	return episodes, nil
}

func (s *Source) urlFor(showID int64) (string, bool) {
	for _, url := range s.urls {
		if HashID(url) == showID {
			return url, true
		}
	}
	return "", false
}

func (s *Source) fetch(ctx context.Context, url string) (*gofeed.Feed, error) {
	op := "fetch " + url

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &source.Error{Kind: source.KindOther, Op: op, Err: err}
	}
	req.Header.Set("User-Agent", "ShowNotify/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &source.Error{Kind: source.KindNetwork, Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		kind := source.KindOther
		if resp.StatusCode == http.StatusTooManyRequests {
			kind = source.KindRateLimited
		} else if resp.StatusCode >= 500 {
			kind = source.KindNetwork
		}
		return nil, &source.Error{Kind: kind, Op: op, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &source.Error{Kind: source.KindNetwork, Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, &source.Error{Kind: source.KindOther, Op: op, Err: fmt.Errorf("parse feed: %w", err)}
	}
	return feed, nil
}

// HashID maps a string key into the positive int64 id space.
func HashID(key string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	id := int64(h.Sum64() & (1<<63 - 1))
	if id == 0 {
		id = 1
	}
	return id
}

func entryGUID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	return item.Title + "|" + item.Link
}

func entryDate(item *gofeed.Item) string {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.Format(time.RFC3339)
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.Format(time.RFC3339)
	}
	return item.Published
}
