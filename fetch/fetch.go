// Package fetch performs the HTTP GETs of the price and rate providers,
// through a daily disk cache and a rate limiter.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// StatusError is returned for a non 2xx HTTP response.
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cannot http GET %s: %s", e.URL, e.Status)
}

// Client gets remote resources.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	log       zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithDiskCache caches successful responses for the day in dir.
func WithDiskCache(dir string) Option {
	return func(c *Client) {
		c.http.Transport = NewDiskCache(c.http.Transport, dir, c.log)
	}
}

// WithRateLimit allows burst requests then one every interval.
func WithRateLimit(interval time.Duration, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Every(interval), burst) }
}

// WithLogger sets the logger. It must come before WithDiskCache to be used by the cache.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log.With().Str("component", "fetch").Logger() }
}

// WithTransport replaces the base transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.http.Transport = rt }
}

// WithUserAgent sets the User-Agent header of every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New returns a Client, with no cache and no rate limit by default.
func New(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: 30 * time.Second},
		limiter:   rate.NewLimiter(rate.Inf, 1),
		userAgent: "Mozilla/5.0 (compatible; im/1.0)",
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the body of a successful GET on addr.
func (c *Client) Get(ctx context.Context, addr string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			URL:    resp.Request.URL.Host + resp.Request.URL.Path,
			Code:   resp.StatusCode,
			Status: resp.Status,
		}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// GetJSON performs a GET on addr and unmarshals the JSON response into data.
func (c *Client) GetJSON(ctx context.Context, addr string, data any) error {
	body, err := c.Get(ctx, addr)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, data)
}
