package omdb

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/ivlev/actorreel/internal/fetch"
)

func newServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		q := r.URL.Query()
		if q.Get("apikey") != "k" || q.Get("type") != "movie" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch q.Get("t") {
		case "Fight Club":
			if q.Get("y") != "1999" {
				t.Errorf("expected year 1999, got %q", q.Get("y"))
			}
			fmt.Fprint(w, `{"Title":"Fight Club","Year":"1999","Actors":"Brad Pitt, Edward Norton, Meat Loaf","Poster":"http://x/fc.jpg","BoxOffice":"$37,030,102","Response":"True"}`)
		case "Obscure":
			fmt.Fprint(w, `{"Title":"Obscure","Poster":"N/A","BoxOffice":"N/A","Response":"True"}`)
		default:
			fmt.Fprint(w, `{"Response":"False","Error":"Movie not found!"}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(srv *httptest.Server) *Client {
	c := New("k", srv.Client())
	c.BaseURL = srv.URL + "/"
	return c
}

func TestGet(t *testing.T) {
	var calls atomic.Int32
	c := newClient(newServer(t, &calls))

	m, err := c.Get(context.Background(), "Fight Club", 1999)
	if err != nil {
		t.Fatal(err)
	}
	if !m.HasActor("brad pitt") || m.HasActor("Brad") {
		t.Errorf("unexpected cast match for %q", m.Actors)
	}
	if m.PosterURL() != "http://x/fc.jpg" {
		t.Errorf("unexpected poster %q", m.PosterURL())
	}
	if v, ok := m.BoxOfficeValue(); !ok || v != 37030102 {
		t.Errorf("unexpected box office %v %v", v, ok)
	}
}

func TestGetNotAvailableFields(t *testing.T) {
	var calls atomic.Int32
	c := newClient(newServer(t, &calls))

	m, err := c.Get(context.Background(), "Obscure", 0)
	if err != nil {
		t.Fatal(err)
	}
	if m.PosterURL() != "" {
		t.Errorf("N/A poster should be empty, got %q", m.PosterURL())
	}
	if _, ok := m.BoxOfficeValue(); ok {
		t.Error("N/A box office should not parse")
	}
}

func TestGetNotFoundIsCached(t *testing.T) {
	var calls atomic.Int32
	c := newClient(newServer(t, &calls))

	for i := 0; i < 3; i++ {
		_, err := c.Get(context.Background(), "Nothing", 2001)
		if errors.Cause(err) != ErrNotFound {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("expected a single request, got %d", calls.Load())
	}
}

func TestGetCachesByTitleAndYear(t *testing.T) {
	var calls atomic.Int32
	c := newClient(newServer(t, &calls))

	c.Get(context.Background(), "Fight Club", 1999)
	c.Get(context.Background(), "fight club ", 1999)
	if calls.Load() != 1 {
		t.Errorf("expected cached lookup, got %d requests", calls.Load())
	}
}

func TestGetWithoutKey(t *testing.T) {
	c := New("", http.DefaultClient)
	if _, err := c.Get(context.Background(), "Fight Club", 0); err != ErrNoAPIKey {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestGetServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	c := New("k", srv.Client())
	c.BaseURL = srv.URL + "/"
	_, err := c.Get(context.Background(), "Fight Club", 0)
	if err == nil || errors.Cause(err) == ErrNotFound {
		t.Errorf("expected status error, got %v", err)
	}
}

func retryingClient(baseURL string) *Client {
	c := New("SECRETKEY123", fetch.NewClient(fetch.Options{
		Retries:       2,
		WaitMin:       time.Millisecond,
		WaitMax:       2 * time.Millisecond,
		Timeout:       time.Second,
		RetryNotFound: true,
	}))
	c.BaseURL = baseURL + "/"
	return c
}

func TestGetRetriedNotFoundIsCached(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()
	c := retryingClient(srv.URL)

	_, err := c.Get(context.Background(), "Nope", 0)
	if errors.Cause(err) != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}

	_, err = c.Get(context.Background(), "Nope", 0)
	if errors.Cause(err) != ErrNotFound {
		t.Errorf("expected cached ErrNotFound, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("second lookup hit the server: %d calls", calls.Load())
	}
}

func TestGetErrorsHideAPIKey(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()
	c := retryingClient(baseURL)

	_, err := c.Get(context.Background(), "Heat", 1995)
	if err == nil {
		t.Fatal("expected error from closed server")
	}
	if strings.Contains(err.Error(), "SECRETKEY123") {
		t.Errorf("api key in error: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected retry log lines")
	}
	if strings.Contains(buf.String(), "SECRETKEY123") {
		t.Errorf("api key in log: %q", buf.String())
	}
}
