// Package catalog talks to the external movie catalog service (TMDB wire
// format).  It is read-only: now-playing listings and per-movie details.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// Movie is a catalog film as returned by the service.  Field names follow
// the wire format so responses unmarshal directly.
type Movie struct {
	ID           uint64  `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	Runtime      int     `json:"runtime,omitempty"`
	Genres       []Genre `json:"genres,omitempty"`
}

// Genre is a catalog genre tag.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Page is one page of a paged listing.
type Page struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// Client issues authenticated requests against the catalog API.  The API
// key travels as a query parameter, which is why this client lives
// server-side: the key never reaches a browser.
type Client struct {
	baseURL    string
	apiKey     string
	language   string
	httpClient *http.Client
}

// New creates a catalog client.  A nil http.Client falls back to the
// default client.
func New(baseURL, apiKey, language string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{baseURL: baseURL, apiKey: apiKey, language: language, httpClient: client}
}

func (c *Client) get(ctx context.Context, path string, extra url.Values, out any) error {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	if c.language != "" {
		q.Set("language", c.language)
	}
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build catalog request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read catalog response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}
	return json.Unmarshal(body, out)
}

// NowPlaying fetches one page of the now-playing listing.  Pages start at 1.
func (c *Client) NowPlaying(ctx context.Context, page int) (Page, error) {
	if page < 1 {
		page = 1
	}
	var p Page
	err := c.get(ctx, "/movie/now_playing", url.Values{"page": {strconv.Itoa(page)}}, &p)
	return p, err
}

// MovieByID fetches full details for a single film.
func (c *Client) MovieByID(ctx context.Context, id uint64) (Movie, error) {
	var m Movie
	err := c.get(ctx, "/movie/"+strconv.FormatUint(id, 10), nil, &m)
	return m, err
}
