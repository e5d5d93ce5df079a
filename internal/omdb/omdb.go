// Package omdb is a small client for the OMDb metadata API.
package omdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/ivlev/actorreel/internal/fetch"
	"github.com/ivlev/actorreel/internal/film"
)

const DefaultBaseURL = "http://www.omdbapi.com/"

var (
	ErrNotFound = errors.New("omdb: movie not found")
	ErrNoAPIKey = errors.New("omdb: api key is not set")
)

type Rating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// Movie mirrors the OMDb response fields the tool reads.
type Movie struct {
	Title     string   `json:"Title"`
	Year      string   `json:"Year"`
	Rated     string   `json:"Rated"`
	Released  string   `json:"Released"`
	Runtime   string   `json:"Runtime"`
	Genre     string   `json:"Genre"`
	Director  string   `json:"Director"`
	Writer    string   `json:"Writer"`
	Actors    string   `json:"Actors"`
	Plot      string   `json:"Plot"`
	Awards    string   `json:"Awards"`
	Poster    string   `json:"Poster"`
	Ratings   []Rating `json:"Ratings"`
	Metascore string   `json:"Metascore"`
	IMDbID    string   `json:"imdbID"`
	Type      string   `json:"Type"`
	BoxOffice string   `json:"BoxOffice"`
	Response  string   `json:"Response"`
	Error     string   `json:"Error"`
}

// HasActor reports whether name is in the top-billed cast.
func (m *Movie) HasActor(name string) bool {
	name = strings.TrimSpace(name)
	for _, a := range strings.Split(m.Actors, ",") {
		if strings.EqualFold(strings.TrimSpace(a), name) {
			return true
		}
	}
	return false
}

// PosterURL returns the poster link, or "" when OMDb has none.
func (m *Movie) PosterURL() string {
	if m.Poster == "N/A" {
		return ""
	}
	return m.Poster
}

func (m *Movie) BoxOfficeValue() (float64, bool) {
	return film.ParseBoxOffice(m.BoxOffice)
}

type cacheKey struct {
	title string
	year  int
}

type Client struct {
	APIKey  string
	BaseURL string

	http  *http.Client
	mu    sync.Mutex
	cache map[cacheKey]*Movie
}

// New returns a client. A nil httpClient gets the retrying default, which
// also retries 404 answers.
func New(apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		opts := fetch.DefaultOptions()
		opts.RetryNotFound = true
		httpClient = fetch.NewClient(opts)
	}
	return &Client{
		APIKey:  apiKey,
		BaseURL: DefaultBaseURL,
		http:    httpClient,
		cache:   make(map[cacheKey]*Movie),
	}
}

// Get looks a movie up by title, narrowed to year when year > 0.
// Found and not-found answers are both cached.
func (c *Client) Get(ctx context.Context, title string, year int) (*Movie, error) {
	if c.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	key := cacheKey{strings.ToLower(strings.TrimSpace(title)), year}

	c.mu.Lock()
	m, ok := c.cache[key]
	c.mu.Unlock()
	if ok {
		if m == nil {
			return nil, errors.Wrapf(ErrNotFound, "%q", title)
		}
		return m, nil
	}

	m, err := c.fetch(ctx, title, year)
	if err != nil && errors.Cause(err) != ErrNotFound {
		return nil, err
	}

	c.mu.Lock()
	c.cache[key] = m
	c.mu.Unlock()
	return m, err
}

func (c *Client) fetch(ctx context.Context, title string, year int) (*Movie, error) {
	q := url.Values{}
	q.Set("apikey", c.APIKey)
	q.Set("t", title)
	q.Set("type", "movie")
	if year > 0 {
		q.Set("y", strconv.Itoa(year))
	}

	resp, err := fetch.Get(ctx, c.http, c.BaseURL+"?"+q.Encode())
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrapf(ctx.Err(), "omdb request %q", title)
		}
		// Transport errors quote the request URL, key included.
		return nil, errors.Errorf("omdb request %q: %s", title, fetch.RedactError(err.Error(), c.APIKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.Wrapf(ErrNotFound, "%q", title)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("omdb %q: status %d", title, resp.StatusCode)
	}

	var m Movie
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, errors.Wrapf(err, "omdb decode %q", title)
	}
	if m.Response == "False" {
		return nil, errors.Wrapf(ErrNotFound, "%q: %s", title, m.Error)
	}
	return &m, nil
}
