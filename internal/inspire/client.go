// Package inspire is a cached, rate-limited client for the INSPIRE-HEP
// literature API.
package inspire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Benkendorfer/HEP-paper-graph/internal/cache"
	"github.com/Benkendorfer/HEP-paper-graph/internal/metrics"
	"github.com/Benkendorfer/HEP-paper-graph/internal/ratelimit"
)

const (
	// BaseURL is the INSPIRE REST API base URL.
	BaseURL = "https://inspirehep.net/api"

	// DefaultTimeout is the fixed per-request timeout.
	DefaultTimeout = 5 * time.Second
)

// Client fetches JSON from INSPIRE. Every network request passes through
// the gate; cache hits do not.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	gate       ratelimit.Gate
	responses  *cache.ResponseCache
	titles     *cache.TitleLog
	baseURL    string
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout. It applies to a client given
// by WithHTTPClient too, whichever option comes first.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithGate sets the rate limiter consulted before network requests.
func WithGate(g ratelimit.Gate) ClientOption {
	return func(c *Client) {
		c.gate = g
	}
}

// WithResponseCache enables the on-disk response cache.
func WithResponseCache(rc *cache.ResponseCache) ClientOption {
	return func(c *Client) {
		c.responses = rc
	}
}

// WithTitleLog enables the title log used by ResolveTitle.
func WithTitleLog(tl *cache.TitleLog) ClientOption {
	return func(c *Client) {
		c.titles = tl
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// WithMetrics enables request and cache counters.
func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a new INSPIRE client. Without options it has no caches
// and uses the default sliding-window limiter.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    BaseURL,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 && c.httpClient.Timeout != c.timeout {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	if c.gate == nil {
		c.gate = ratelimit.NewWindow(ratelimit.DefaultMaxRequests, ratelimit.DefaultTimeWindow,
			ratelimit.WithLogger(c.logger))
	}
	return c
}

// ArxivURL returns the lookup URL for an arXiv identifier.
func (c *Client) ArxivURL(arxivID string) string {
	return c.baseURL + "/arxiv/" + url.PathEscape(arxivID)
}

// LiteratureURL returns the record URL for an INSPIRE record id.
func (c *Client) LiteratureURL(recordID string) string {
	return c.baseURL + "/literature/" + url.PathEscape(recordID)
}

// TitleSearchURL returns the search URL used to resolve a record's title.
func (c *Client) TitleSearchURL(recordID string) string {
	q := url.Values{}
	q.Set("q", "recid:"+recordID)
	q.Set("fields", "titles")
	return c.baseURL + "/literature?" + q.Encode()
}

// Fetch resolves rawURL to a JSON payload. With useCache, a stored response
// is returned without touching the rate limiter, and a fresh response is
// written through before returning. Failures are logged and returned; they
// are never retried.
func (c *Client) Fetch(ctx context.Context, rawURL string, useCache bool) (json.RawMessage, error) {
	cacheEnabled := useCache && c.responses != nil
	if cacheEnabled {
		c.logger.Debug().Str("url", rawURL).Msg("checking response cache")
		payload, ok, err := c.responses.Get(rawURL)
		switch {
		case err != nil:
			c.logger.Warn().Err(err).Str("url", rawURL).Msg("unreadable cache entry, refetching")
		case ok:
			c.countCache(metrics.CacheResponse, true)
			c.logger.Debug().Str("url", rawURL).Msg("response cache hit")
			return payload, nil
		}
		c.countCache(metrics.CacheResponse, false)
	}

	if err := c.gate.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	payload, err := c.get(ctx, rawURL)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", rawURL).Msg("API request failed")
		if c.metrics != nil {
			c.metrics.Failures.WithLabelValues(failureReason(err)).Inc()
		}
		return nil, err
	}
	c.logger.Info().Str("url", rawURL).Msg("API request successful")

	if cacheEnabled {
		if err := c.responses.Put(rawURL, payload); err != nil {
			c.logger.Warn().Err(err).Str("url", rawURL).Msg("caching response failed")
		} else {
			c.logger.Debug().Str("url", rawURL).Msg("cached response")
		}
	}
	return payload, nil
}

// get performs one HTTP GET and classifies any failure.
func (c *Client) get(ctx context.Context, rawURL string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if c.metrics != nil {
		c.metrics.Requests.Inc()
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp, rawURL); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: body from %s is not JSON", ErrInvalidResponse, rawURL)
	}
	return json.RawMessage(body), nil
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response, rawURL string) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, rawURL)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode >= 400:
		return &APIError{StatusCode: resp.StatusCode, URL: rawURL}
	}
	return nil
}

func classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", ErrNetworkTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrConnectionFailure, err)
}

func (c *Client) countCache(name string, hit bool) {
	if c.metrics == nil {
		return
	}
	if hit {
		c.metrics.CacheHits.WithLabelValues(name).Inc()
	} else {
		c.metrics.CacheMisses.WithLabelValues(name).Inc()
	}
}

// ArxivRecord fetches and decodes the record for an arXiv identifier.
func (c *Client) ArxivRecord(ctx context.Context, arxivID string, useCache bool) (*Record, error) {
	return c.record(ctx, c.ArxivURL(arxivID), useCache)
}

// LiteratureRecord fetches and decodes the record with the given id.
func (c *Client) LiteratureRecord(ctx context.Context, recordID string, useCache bool) (*Record, error) {
	return c.record(ctx, c.LiteratureURL(recordID), useCache)
}

func (c *Client) record(ctx context.Context, rawURL string, useCache bool) (*Record, error) {
	payload, err := c.Fetch(ctx, rawURL, useCache)
	if err != nil {
		return nil, err
	}
	return DecodeRecord(payload)
}
