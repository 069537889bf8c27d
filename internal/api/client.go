// Package api implements the episode-tracker REST source.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"shownotify/internal/model"
	"shownotify/internal/source"
)

const maxBodySize = 5 * 1024 * 1024

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the episode-tracker API.
type Client struct {
	client  HTTPClient
	baseURL string
	token   string
}

// New creates a Client for the API at baseURL authenticating with token.
func New(client HTTPClient, baseURL, token string) *Client {
	return &Client{
		client:  client,
		baseURL: baseURL,
		token:   token,
	}
}

type showPayload struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Remaining int    `json:"remaining"`
	Archived  bool   `json:"archived"`
}

type episodePayload struct {
	ID     int64  `json:"id"`
	ShowID int64  `json:"show_id"`
	Code   string `json:"code"`
	Title  string `json:"title"`
	Date   string `json:"date"`
	URL    string `json:"url"`
}

// ListShows returns the member's tracked shows.
func (c *Client) ListShows(ctx context.Context) ([]model.Show, error) {
	var payload struct {
		Shows []showPayload `json:"shows"`
	}
	if err := c.get(ctx, "/shows", &payload); err != nil {
		return nil, err
	}

	shows := make([]model.Show, 0, len(payload.Shows))
	for _, s := range payload.Shows {
		shows = append(shows, model.Show{
			ID:        s.ID,
			Name:      s.Name,
			Remaining: s.Remaining,
			Archived:  s.Archived,
		})
	}
	return shows, nil
}

// UnseenEpisodes returns the not-yet-watched episodes of one show.
func (c *Client) UnseenEpisodes(ctx context.Context, showID int64) ([]model.Episode, error) {
	var payload struct {
		Episodes []episodePayload `json:"episodes"`
	}
	path := fmt.Sprintf("/shows/%d/episodes/unseen", showID)
	if err := c.get(ctx, path, &payload); err != nil {
		return nil, err
	}

	episodes := make([]model.Episode, 0, len(payload.Episodes))
	for _, e := range payload.Episodes {
		showRef := e.ShowID
		if showRef == 0 {
			showRef = showID
		}
		episodes = append(episodes, model.Episode{
			ID:          e.ID,
			ShowID:      showRef,
			Code:        e.Code,
			Title:       e.Title,
			ReleaseDate: e.Date,
			URL:         e.URL,
		})
	}
	return episodes, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	op := "GET " + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &source.Error{Kind: source.KindOther, Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ShowNotify/1.0")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &source.Error{Kind: classifyTransportErr(err), Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return &source.Error{
			Kind: classifyStatus(resp.StatusCode),
			Op:   op,
			Err:  fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &source.Error{Kind: source.KindNetwork, Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &source.Error{Kind: source.KindOther, Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func classifyStatus(status int) source.ErrorKind {
	switch {
	case status == http.StatusTooManyRequests:
		return source.KindRateLimited
	case status == http.StatusGatewayTimeout:
		return source.KindTimeout
	case status >= 500:
		return source.KindNetwork
	default:
		return source.KindOther
	}
}

func classifyTransportErr(err error) source.ErrorKind {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return source.KindTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return source.KindTimeout
	}
	return source.KindNetwork
}

// DefaultHTTPClient returns the http.Client used when none is injected.
func DefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
