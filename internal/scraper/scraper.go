package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pfrederiksen/deetlist/internal/logger"
)

const (
	UserAgent      = "deetlist-cli/1.0 (github.com/pfrederiksen/deetlist)"
	Timeout        = 30 * time.Second
	DefaultRetries = 3

	// maxPageBytes caps how much of a response body is read.
	maxPageBytes = 10 << 20
)

// Fetcher returns the HTML body of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) (string, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// HTTPError reports a non-200 response.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// Temporary reports whether the request may succeed if retried.
func (e *HTTPError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// FetchError wraps any failure to fetch a page, transport or status.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status carried by err, or 0 if there is none.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}

// Client fetches pages over HTTP.
type Client struct {
	client     *http.Client
	userAgent  string
	retries    uint64
	newBackOff func() backoff.BackOff
	log        *logger.Logger
	metrics    *logger.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.client.Timeout = d }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithRetries sets how many times a transient failure is retried.
func WithRetries(n uint64) Option {
	return func(c *Client) { c.retries = n }
}

// WithBackOff sets the backoff policy used between retries.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(c *Client) { c.newBackOff = newBackOff }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithMetrics sets the metrics tracker.
func WithMetrics(m *logger.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		client: &http.Client{
			Timeout: Timeout,
		},
		userAgent:  UserAgent,
		retries:    DefaultRetries,
		newBackOff: defaultBackOff,
		log:        logger.Default(),
		metrics:    logger.DefaultMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = time.Minute
	return b
}

// Fetch fetches url and returns the body. Transport errors, 429 and 5xx
// responses are retried; other statuses fail immediately.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	start := time.Now()
	defer c.metrics.Since("fetch.duration", start)

	var body string
	attempt := 0
	op := func() error {
		attempt++
		c.metrics.IncrCounter("fetch.requests")
		b, err := c.fetchOnce(ctx, url)
		if err != nil {
			return err
		}
		body = b
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.retries), ctx)
	notify := func(err error, wait time.Duration) {
		c.metrics.IncrCounter("fetch.retries")
		c.log.Warn("retrying fetch", logger.Fields{
			"url":     url,
			"attempt": attempt,
			"wait":    wait.String(),
			"error":   err.Error(),
		})
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		c.metrics.IncrCounter("fetch.errors")
		var fe *FetchError
		if !errors.As(err, &fe) {
			err = &FetchError{URL: url, Err: err}
		}
		return "", err
	}

	c.log.Debug("fetched page", logger.Fields{
		"url":      url,
		"attempts": attempt,
		"bytes":    len(body),
	})
	return body, nil
}

// fetchOnce performs a single request. Errors that should not be retried are
// wrapped with backoff.Permanent.
func (c *Client) fetchOnce(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", backoff.Permanent(&FetchError{URL: url, Err: fmt.Errorf("creating request: %w", err)})
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		fe := &FetchError{URL: url, Err: err}
		if ctx.Err() != nil {
			return "", backoff.Permanent(fe)
		}
		return "", fe
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		he := &HTTPError{URL: url, StatusCode: resp.StatusCode}
		fe := &FetchError{URL: url, Err: he}
		if he.Temporary() {
			return "", fe
		}
		return "", backoff.Permanent(fe)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("reading body: %w", err)}
	}
	return string(data), nil
}
