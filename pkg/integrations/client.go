package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/changetower/pkg/buildinfo"
	"github.com/matzehuels/changetower/pkg/httputil"
	"github.com/matzehuels/changetower/pkg/observability"
)

// Client provides shared HTTP functionality for the changelog source and
// registry clients: default headers, a concurrency gate shared by every
// request, and retry with backoff for transient failures.
type Client struct {
	http    *http.Client
	headers map[string]string
	gate    *httputil.Gate
	retry   httputil.RetryOptions
	logger  *log.Logger
}

// Options configures a [Client]. The zero value is usable.
type Options struct {
	// HTTPClient overrides the default client (used by tests).
	HTTPClient *http.Client

	// Headers are applied to every request.
	Headers map[string]string

	// Gate bounds concurrent requests. Nil means unbounded.
	Gate *httputil.Gate

	// Retry configures backoff. ShouldRetry and OnRetry are filled in by
	// the client when unset.
	Retry httputil.RetryOptions

	Logger *log.Logger
}

// NewClient creates a Client.
func NewClient(opts Options) *Client {
	c := &Client{
		http:    opts.HTTPClient,
		headers: opts.Headers,
		gate:    opts.Gate,
		retry:   opts.Retry,
		logger:  opts.Logger,
	}
	if c.http == nil {
		c.http = NewHTTPClient()
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	if c.retry.OnRetry == nil {
		c.retry.OnRetry = func(err error, attempt int, delay time.Duration) {
			c.logger.Debug("retrying request", "attempt", attempt+1, "delay", delay, "err", err)
			observability.Fetch().OnRetry(context.Background(), attempt, delay, err)
		}
	}
	return c
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, rawURL string, v any) error {
	data, err := c.fetch(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return nil
}

// GetText performs an HTTP GET request and returns the response body as a string.
func (c *Client) GetText(ctx context.Context, rawURL string) (string, error) {
	data, err := c.fetch(ctx, rawURL)
	return string(data), err
}

// fetch runs one gated request per attempt so that a backoff sleep never
// holds a gate slot.
func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	return httputil.RetryValue(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		var body []byte
		err := c.gate.Do(ctx, func(ctx context.Context) error {
			var err error
			body, err = c.doRequest(ctx, rawURL)
			return err
		})
		return body, err
	})
}

func (c *Client) doRequest(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	host, path := splitURL(rawURL)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, http.MethodGet, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, http.MethodGet, host, path, err)
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, http.MethodGet, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: read body: %v", ErrNetwork, err)}
	}
	return data, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

func splitURL(raw string) (host, path string) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", raw
	}
	return u.Host, u.Path
}
