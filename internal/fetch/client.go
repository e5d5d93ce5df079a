// Package fetch builds the HTTP clients used for posters, metadata and
// scraping. All of them retry with exponential backoff.
package fetch

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const UserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

type Options struct {
	Retries int
	WaitMin time.Duration
	WaitMax time.Duration
	Timeout time.Duration
	// RetryNotFound treats 404 as transient. The metadata API answers 404
	// under load.
	RetryNotFound bool
}

func DefaultOptions() Options {
	return Options{
		Retries: 5,
		WaitMin: 1 * time.Second,
		WaitMax: 16 * time.Second,
		Timeout: 15 * time.Second,
	}
}

// NewRetryable returns the underlying retryablehttp client, for callers
// that want its Request type directly.
func NewRetryable(opts Options) *retryablehttp.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.Retries
	rc.RetryWaitMin = opts.WaitMin
	rc.RetryWaitMax = opts.WaitMax
	rc.Backoff = retryablehttp.DefaultBackoff
	rc.HTTPClient.Timeout = opts.Timeout
	rc.Logger = nil
	rc.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			log.Printf("[!] Повтор запроса %s (попытка %d)", RedactURL(req.URL), attempt+1)
		}
	}
	rc.CheckRetry = checkRetry(opts.RetryNotFound)
	// The last response goes back to the caller, so a 404 that was retried
	// still reads as a 404.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return rc
}

// SecretParams are query parameters hidden by RedactURL.
var SecretParams = []string{"apikey"}

// RedactURL renders u with secret query values replaced.
func RedactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	q := u.Query()
	hidden := false
	for _, name := range SecretParams {
		if q.Has(name) {
			q.Set(name, "REDACTED")
			hidden = true
		}
	}
	if !hidden {
		return u.String()
	}
	c := *u
	c.RawQuery = q.Encode()
	return c.String()
}

// RedactError returns msg with every plain or query-escaped occurrence of
// secret removed.
func RedactError(msg, secret string) string {
	if secret == "" {
		return msg
	}
	msg = strings.ReplaceAll(msg, url.QueryEscape(secret), "REDACTED")
	return strings.ReplaceAll(msg, secret, "REDACTED")
}

// NewClient wraps NewRetryable as a plain *http.Client.
func NewClient(opts Options) *http.Client {
	return NewRetryable(opts).StandardClient()
}

func checkRetry(retryNotFound bool) retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if retryNotFound && err == nil && resp != nil && resp.StatusCode == http.StatusNotFound {
			return true, nil
		}
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
}

// Get issues a GET with the shared browser user agent.
func Get(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)
	return client.Do(req)
}
