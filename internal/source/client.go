package source

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the WordPress.org plugin information endpoint.
	DefaultBaseURL = "https://api.wordpress.org/plugins/info/1.2/"

	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "pluginreviews/1.0 (+https://github.com/nao1215/pluginreviews)"

	// DefaultMaxBodySize is the largest response body accepted (5MB).
	DefaultMaxBodySize = 5 * 1024 * 1024

	// DefaultRequestsPerSecond is the client-side request rate.
	DefaultRequestsPerSecond = 2.0

	// DefaultMaxRetries is how often a retryable response is retried.
	DefaultMaxRetries = 3
)

// Outcomes reported to an Observer.
const (
	OutcomeOK        = "ok"
	OutcomeNotFound  = "not_found"
	OutcomeNoReviews = "no_reviews"
	OutcomeError     = "error"
)

// Observer receives the outcome and duration of every Fetch.
// metrics.Metrics implements it.
type Observer interface {
	ObserveUpstream(outcome string, d time.Duration)
}

// Client fetches review HTML from the plugin information API.
// It is safe for concurrent use.
type Client struct {
	baseURL     string
	userAgent   string
	hc          *http.Client
	limiter     *rate.Limiter
	maxBodySize int64
	maxRetries  int
	backoff     func(attempt int) time.Duration
	logger      *slog.Logger
	observer    Observer
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = base
	}
}

// WithHTTPClient sets the HTTP client, e.g. one built by NewProxyHTTPClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.hc.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the largest accepted response body in bytes.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithRateLimit sets the client-side request rate. A non-positive rps
// disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMaxRetries sets how often retryable responses are retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithBackoff replaces the delay used between retries when the server sends
// no Retry-After header.
func WithBackoff(fn func(attempt int) time.Duration) Option {
	return func(c *Client) {
		if fn != nil {
			c.backoff = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithObserver sets the receiver of fetch outcomes.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// NewClient creates a Client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		userAgent:   DefaultUserAgent,
		hc:          &http.Client{Timeout: DefaultTimeout},
		limiter:     rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
		maxBodySize: DefaultMaxBodySize,
		maxRetries:  DefaultMaxRetries,
		backoff:     backoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// pluginInfo is the subset of the plugin information response we read.
type pluginInfo struct {
	Name     string            `json:"name"`
	Slug     string            `json:"slug"`
	Error    string            `json:"error"`
	Sections map[string]string `json:"sections"`
}

// Fetch returns the reviews section HTML of the plugin identified by slug.
func (c *Client) Fetch(ctx context.Context, slug string) (string, error) {
	start := time.Now()
	html, err := c.fetch(ctx, slug)
	c.observe(outcome(err), time.Since(start))
	return html, err
}

func (c *Client) fetch(ctx context.Context, slug string) (string, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return "", ErrInvalidSlug
	}

	endpoint, err := c.endpoint(slug)
	if err != nil {
		return "", err
	}

	body, status, err := c.get(ctx, endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", slug, err)
	}

	var info pluginInfo
	if err := json.Unmarshal(body, &info); err != nil {
		if status == http.StatusNotFound {
			return "", fmt.Errorf("%w: %s", ErrNotFound, slug)
		}
		return "", fmt.Errorf("failed to decode plugin information for %s: %w", slug, err)
	}
	if info.Error != "" || status == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s: %s", ErrNotFound, slug, info.Error)
	}

	reviews, ok := info.Sections["reviews"]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoReviews, slug)
	}

	c.logger.Debug("fetched reviews", "slug", slug, "plugin", info.Name, "bytes", len(reviews))
	return reviews, nil
}

// endpoint builds the plugin information URL for slug.
func (c *Client) endpoint(slug string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", c.baseURL, err)
	}

	q := u.Query()
	q.Set("action", "plugin_information")
	q.Set("request[slug]", slug)
	q.Set("request[fields][reviews]", "1")
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// get performs a GET with client-side rate limiting and retries and returns
// the body and status of a 200 or 404 response.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, 0, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, 0, ctx.Err()
			}
			lastErr = err
			if attempt < c.maxRetries && sleepCtx(ctx, c.backoff(attempt)) {
				continue
			}
			if ctx.Err() != nil {
				return nil, 0, ctx.Err()
			}
			return nil, 0, lastErr
		}

		switch resp.StatusCode {
		case http.StatusOK, http.StatusNotFound:
			// The API reports unknown plugins as 404 with a JSON error.
			body, err := c.readBody(resp.Body)
			resp.Body.Close()
			return body, resp.StatusCode, err

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			if wait == 0 {
				wait = c.backoff(attempt)
			}
			lastErr = fmt.Errorf("remote status %d", resp.StatusCode)
			c.logger.Debug("retrying upstream request", "status", resp.StatusCode, "attempt", attempt+1, "wait", wait)
			if attempt < c.maxRetries && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, 0, ctx.Err()
			}
			return nil, 0, lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, 0, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return nil, 0, lastErr
}

// readBody reads at most maxBodySize bytes and fails if there are more.
func (c *Client) readBody(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, c.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrResponseTooLarge, c.maxBodySize)
	}
	return body, nil
}

func (c *Client) observe(outcome string, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveUpstream(outcome, d)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrNoReviews):
		return OutcomeNoReviews
	default:
		return OutcomeError
	}
}

// sleepCtx waits for d or returns false early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses the Retry-After header (seconds or HTTP-date).
// It returns 0 if the header is absent or invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential delay (200ms, 400ms, 800ms, ...) with up to
// 50% random jitter.
func backoff(attempt int) time.Duration {
	base := time.Duration(1<<attempt) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
