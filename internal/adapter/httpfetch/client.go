package httpfetch

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/user/speedsale-scraper/internal/repository"
)

// Options configures a Client.
type Options struct {
	UserAgent         string
	RespectRobots     bool
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
	MaxRetries        int
	RetryBackoff      time.Duration
	// Base overrides the underlying transport.
	Base http.RoundTripper
}

// Client fetches pages politely and returns decoded bodies.
type Client struct {
	http       *http.Client
	maxRetries int
	backoff    time.Duration
}

// New creates a Client from opts.
func New(opts Options) *Client {
	base := opts.Base
	if base == nil {
		base = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			DisableCompression:  true,
		}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	backoff := opts.RetryBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	transport := &PoliteTransport{
		Base:        base,
		Fingerprint: NewFingerprintPool(opts.UserAgent),
		Limits:      NewHostLimiter(opts.RequestsPerSecond, opts.Burst),
	}
	if opts.RespectRobots {
		transport.Robots = NewRobotsChecker(&http.Client{Transport: base, Timeout: timeout})
	}

	return &Client{
		http:       &http.Client{Transport: transport, Timeout: timeout},
		maxRetries: opts.MaxRetries,
		backoff:    backoff,
	}
}

// Get fetches rawURL and returns the decoded body. Non-2xx responses wrap
// repository.ErrFetchFailed.
func (c *Client) Get(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", repository.ErrFetchFailed, err)
	}

	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s returned status %d", repository.ErrFetchFailed, rawURL, resp.StatusCode)
	}

	body, err := ReadBody(resp)
	if err != nil {
		return "", fmt.Errorf("%w: %v", repository.ErrFetchFailed, err)
	}
	return string(body), nil
}

// doWithRetry retries transport errors and 5xx responses with a linear backoff.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			select {
			case <-time.After(time.Duration(i) * c.backoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", repository.ErrFetchFailed, ctx.Err())
			}
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if errors.Is(err, repository.ErrBlockedByRobots) || ctx.Err() != nil {
				return nil, err
			}
			lastErr = err
			continue
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			continue
		}
		return resp, nil
	}
	return nil, fmt.Errorf("%w: request failed after %d retries: %v", repository.ErrFetchFailed, c.maxRetries, lastErr)
}

// ReadBody reads and decompresses an HTTP response body.
func ReadBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	default:
		reader = resp.Body
	}
	return io.ReadAll(reader)
}
