package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mapsvg/pkg/buildinfo"
	"github.com/matzehuels/mapsvg/pkg/cache"
	mserrors "github.com/matzehuels/mapsvg/pkg/errors"
	"github.com/matzehuels/mapsvg/pkg/httputil"
	"github.com/matzehuels/mapsvg/pkg/observability"
)

const (
	httpTimeout  = 15 * time.Second
	maxBodyBytes = 64 << 20
)

var (
	// ErrNotFound is returned when a file or URL does not exist.
	ErrNotFound = errors.New("source not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// Client fetches documents with caching and retries.
type Client struct {
	http     *http.Client
	cache    cache.Cache
	keys     cache.Keyer
	ttl      time.Duration
	refresh  bool
	urlOnly  bool
	attempts int
	delay    time.Duration
	logger   *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithCache stores remote responses in c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(cl *Client) {
		if c != nil {
			cl.cache = c
		}
		cl.ttl = ttl
	}
}

// WithKeyer overrides the cache key layout.
func WithKeyer(k cache.Keyer) Option {
	return func(c *Client) {
		if k != nil {
			c.keys = k
		}
	}
}

// WithRefresh bypasses cached responses. Fresh responses are still stored.
func WithRefresh(refresh bool) Option { return func(c *Client) { c.refresh = refresh } }

// WithURLOnly rejects local paths, so only http(s) locations are fetched.
func WithURLOnly() Option { return func(c *Client) { c.urlOnly = true } }

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithRetry sets the number of attempts and the initial backoff delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) { c.attempts, c.delay = attempts, delay }
}

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient returns a Client. Without WithCache nothing is cached.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:     &http.Client{Timeout: httpTimeout},
		cache:    cache.NewNullCache(),
		keys:     cache.NewDefaultKeyer(),
		attempts: 3,
		delay:    time.Second,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsURL reports whether loc is an http or https URL.
func IsURL(loc string) bool {
	return strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://")
}

// Fetch returns the bytes at loc, a local path or an http(s) URL.
func (c *Client) Fetch(ctx context.Context, loc string) ([]byte, error) {
	if loc == "" {
		return nil, mserrors.New(mserrors.ErrCodeInvalidInput, "empty source location")
	}
	if !IsURL(loc) {
		if c.urlOnly {
			return nil, mserrors.New(mserrors.ErrCodeInvalidInput, "only http(s) sources are allowed, got %q", loc)
		}
		return c.readFile(loc)
	}
	if err := mserrors.ValidateURL(loc); err != nil {
		return nil, err
	}

	key := c.keys.HTTPKey("fetch", loc)
	if !c.refresh {
		if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
			c.logger.Debug("cache hit", "url", loc, "bytes", len(data))
			return data, nil
		}
	}

	var body []byte
	err := httputil.Retry(ctx, c.attempts, c.delay, func() error {
		var err error
		body, err = c.get(ctx, loc)
		return err
	})
	if err != nil {
		return nil, classify(loc, err)
	}
	if err := c.cache.Set(ctx, key, body, c.ttl); err != nil {
		c.logger.Warn("cache write failed", "url", loc, "error", err)
	}
	c.logger.Debug("fetched", "url", loc, "bytes", len(body))
	return body, nil
}

func (c *Client) readFile(path string) ([]byte, error) {
	if err := mserrors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, mserrors.Wrap(mserrors.ErrCodeFileNotFound, fmt.Errorf("%w: %s", ErrNotFound, path), "file not found: %s", path)
	}
	if err != nil {
		return nil, mserrors.Wrap(mserrors.ErrCodeInvalidInput, err, "read %s", path)
	}
	return data, nil
}

func (c *Client) get(ctx context.Context, loc string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, text/csv, */*")
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	host, path := req.URL.Host, req.URL.Path
	observability.HTTP().OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, req.Method, host, path, err)
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := httputil.CheckStatus(resp.StatusCode, loc); err != nil {
		return nil, err
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}

// classify maps fetch failures onto error codes.
func classify(loc string, err error) error {
	var se *httputil.StatusError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return mserrors.Wrap(mserrors.ErrCodeTimeout, err, "fetch %s timed out", loc)
	case errors.As(err, &se) && se.Code == http.StatusNotFound:
		return mserrors.Wrap(mserrors.ErrCodeNotFound, fmt.Errorf("%w: %s", ErrNotFound, loc), "not found: %s", redact(loc))
	case errors.As(err, &se) && se.Code == http.StatusTooManyRequests:
		return mserrors.Wrap(mserrors.ErrCodeRateLimited, err, "rate limited by %s", redact(loc))
	case errors.As(err, &se):
		return mserrors.Wrap(mserrors.ErrCodeNetwork, fmt.Errorf("%w: %v", ErrNetwork, err), "fetch %s: status %d", redact(loc), se.Code)
	default:
		return mserrors.Wrap(mserrors.ErrCodeNetwork, err, "fetch %s", redact(loc))
	}
}

// redact drops credentials and the query string from loc for messages.
func redact(loc string) string {
	u, err := url.Parse(loc)
	if err != nil {
		return loc
	}
	u.User = nil
	u.RawQuery = ""
	return u.String()
}
