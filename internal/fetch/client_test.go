package fetch

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func fastOptions() Options {
	return Options{Retries: 3, WaitMin: time.Millisecond, WaitMax: 2 * time.Millisecond, Timeout: time.Second}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if r.Header.Get("User-Agent") != UserAgent {
			t.Errorf("user agent not set: %q", r.Header.Get("User-Agent"))
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	resp, err := Get(context.Background(), NewClient(fastOptions()), srv.URL)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestClientNotFoundPolicy(t *testing.T) {
	tests := []struct {
		name          string
		retryNotFound bool
		wantCalls     int32
	}{
		{"default", false, 1},
		{"retry 404", true, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(http.StatusNotFound)
			}))
			defer srv.Close()

			opts := fastOptions()
			opts.RetryNotFound = tt.retryNotFound
			resp, err := Get(context.Background(), NewClient(opts), srv.URL)
			if err != nil {
				t.Fatalf("expected the last response, got %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusNotFound {
				t.Errorf("expected 404, got %d", resp.StatusCode)
			}
			if calls != tt.wantCalls {
				t.Errorf("expected %d calls, got %d", tt.wantCalls, calls)
			}
		})
	}
}

func TestRedactURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://x/?apikey=SECRET&t=Heat", "http://x/?apikey=REDACTED&t=Heat"},
		{"http://x/?t=Heat", "http://x/?t=Heat"},
		{"http://x/path", "http://x/path"},
	}

	for _, tt := range tests {
		u, _ := url.Parse(tt.in)
		if got := RedactURL(u); got != tt.want {
			t.Errorf("RedactURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if RedactURL(nil) != "" {
		t.Error("expected empty string for nil URL")
	}
}

func TestRedactError(t *testing.T) {
	msg := `Get "http://x/?apikey=a%2Bb&t=Heat": EOF (key a+b)`
	got := RedactError(msg, "a+b")
	if strings.Contains(got, "a+b") || strings.Contains(got, "a%2Bb") {
		t.Errorf("secret left in %q", got)
	}
	if RedactError(msg, "") != msg {
		t.Error("empty secret must leave the message unchanged")
	}
}

func TestRetryLogHidesAPIKey(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	resp, err := Get(context.Background(), NewClient(fastOptions()), srv.URL+"/?apikey=SECRETKEY123&t=Heat")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if !strings.Contains(buf.String(), "REDACTED") {
		t.Errorf("expected a retry log line, got %q", buf.String())
	}
	if strings.Contains(buf.String(), "SECRETKEY123") {
		t.Errorf("api key in log: %q", buf.String())
	}
}
