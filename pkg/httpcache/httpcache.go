// Package httpcache provides cached, rate limited, retrying HTTP fetches.
package httpcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/codeGROOVE-dev/sfcache"
	"github.com/codeGROOVE-dev/sfcache/pkg/store/localfs"
)

// DefaultErrorTTL is how long a cached failure is served before the URL is fetched again.
const DefaultErrorTTL = 10 * time.Minute

// UserAgent is the browser User-Agent sent when callers do not set one.
const UserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// Stats tracks cache hit/miss statistics.
type Stats struct {
	Hits   int64
	Misses int64
}

// HitRate returns the cache hit rate as a percentage (0-100).
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Cacher allows external cache implementations.
type Cacher interface {
	GetSet(ctx context.Context, key string, fetch func(context.Context) ([]byte, error), ttl ...time.Duration) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl ...time.Duration) error
	TTL() time.Duration
}

// Cache wraps sfcache for HTTP response caching.
type Cache struct {
	*sfcache.TieredCache[string, []byte]

	ttl time.Duration
}

// New creates a Cache with disk persistence under the user cache directory.
func New(ttl time.Duration) (*Cache, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	return NewWithPath(ttl, filepath.Join(cacheDir, "companyfinder"))
}

// NewWithPath creates a Cache with disk persistence at the specified path.
func NewWithPath(ttl time.Duration, cachePath string) (*Cache, error) {
	if err := os.MkdirAll(cachePath, 0o750); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	persist, err := localfs.New[string, []byte]("companyfinder", cachePath)
	if err != nil {
		return nil, fmt.Errorf("create persistence layer: %w", err)
	}

	tc, err := sfcache.NewTiered[string, []byte](persist, sfcache.TTL(ttl))
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}

	return &Cache{TieredCache: tc, ttl: ttl}, nil
}

// TTL returns the default TTL for cache entries.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Key converts a URL or query to a cache key using SHA256.
func Key(s string) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:])
}

// HTTPError represents a non-200 HTTP response.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d fetching %s", e.StatusCode, e.URL)
}

// Fetcher performs GET requests through an optional cache.
// It is safe for concurrent use.
type Fetcher struct {
	client      *http.Client
	cache       Cacher
	limiter     *RateLimiter
	logger      *slog.Logger
	hits        atomic.Int64
	misses      atomic.Int64
	attempts    uint
	retryWindow time.Duration
	errorTTL    time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithCache enables response caching. A nil cache disables it.
func WithCache(c Cacher) Option {
	return func(f *Fetcher) { f.cache = c }
}

// WithLogger sets a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = logger }
}

// WithTimeout sets the per-request timeout of the underlying client.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.client.Timeout = d }
}

// WithTransport replaces the client transport, mostly for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *Fetcher) { f.client.Transport = rt }
}

// WithRateLimiter replaces the per-domain rate limiter.
func WithRateLimiter(l *RateLimiter) Option {
	return func(f *Fetcher) { f.limiter = l }
}

// WithErrorTTL sets how long HTTP and network failures stay cached.
func WithErrorTTL(d time.Duration) Option {
	return func(f *Fetcher) { f.errorTTL = d }
}

// WithRetry sets the number of attempts and the total time allowed for them.
func WithRetry(attempts uint, window time.Duration) Option {
	return func(f *Fetcher) {
		f.attempts = attempts
		f.retryWindow = window
	}
}

// NewFetcher creates a Fetcher with a 10 second timeout, one retry, and a
// 1.1 second minimum delay between requests to the same host.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      &http.Client{Timeout: 10 * time.Second},
		limiter:     NewRateLimiter(1100 * time.Millisecond),
		logger:      slog.Default(),
		attempts:    2,
		retryWindow: 30 * time.Second,
		errorTTL:    DefaultErrorTTL,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Stats returns the cache statistics of this Fetcher.
func (f *Fetcher) Stats() Stats {
	return Stats{Hits: f.hits.Load(), Misses: f.misses.Load()}
}

// Fetch returns the body of req. With a cache configured, concurrent calls
// for the same URL share one request, and failures are cached too so a
// failing host is not hammered. Failures expire after the error TTL rather
// than the cache TTL.
func (f *Fetcher) Fetch(ctx context.Context, req *http.Request) ([]byte, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent)
	}

	if f.cache == nil {
		f.misses.Add(1)
		return f.do(ctx, req)
	}

	key := Key(req.URL.String())
	var wasFetched bool
	data, err := f.cache.GetSet(ctx, key, func(ctx context.Context) ([]byte, error) {
		wasFetched = true
		f.misses.Add(1)
		f.logger.DebugContext(ctx, "cache miss", "url", req.URL.String())
		body, fetchErr := f.do(ctx, req)
		if fetchErr != nil {
			var httpErr *HTTPError
			if errors.As(fetchErr, &httpErr) {
				return fmt.Appendf(nil, "ERROR:%d", httpErr.StatusCode), nil
			}
			if ctx.Err() != nil {
				return nil, fetchErr
			}
			return fmt.Appendf(nil, "NETERR:%s", fetchErr.Error()), nil
		}
		return body, nil
	}, f.cache.TTL())

	if !wasFetched {
		f.hits.Add(1)
		f.logger.DebugContext(ctx, "cache hit", "url", req.URL.String())
	}
	if err != nil {
		return nil, err
	}

	s := string(data)
	if wasFetched && isErrorMarker(s) {
		if setErr := f.cache.Set(ctx, key, data, f.errorTTL); setErr != nil {
			f.logger.DebugContext(ctx, "failed to shorten error TTL", "url", req.URL.String(), "error", setErr)
		}
	}
	if code, found := strings.CutPrefix(s, "ERROR:"); found {
		status, _ := strconv.Atoi(code) //nolint:errcheck // 0 is acceptable default
		return nil, &HTTPError{StatusCode: status, URL: req.URL.String()}
	}
	if msg, found := strings.CutPrefix(s, "NETERR:"); found {
		return nil, fmt.Errorf("cached network error: %s", msg)
	}
	return data, nil
}

func isErrorMarker(s string) bool {
	return strings.HasPrefix(s, "ERROR:") || strings.HasPrefix(s, "NETERR:")
}

func (f *Fetcher) do(ctx context.Context, req *http.Request) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.retryWindow)
	defer cancel()

	return retry.DoWithData(
		func() ([]byte, error) {
			if err := f.limiter.Wait(ctx, req.URL.String()); err != nil {
				return nil, err
			}

			resp, err := f.client.Do(req.WithContext(ctx))
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close() //nolint:errcheck // intentional

			if resp.StatusCode != http.StatusOK {
				return nil, &HTTPError{StatusCode: resp.StatusCode, URL: req.URL.String()}
			}
			return io.ReadAll(resp.Body)
		},
		retry.Context(ctx),
		retry.Attempts(f.attempts),
		retry.Delay(200*time.Millisecond),
		retry.MaxJitter(100*time.Millisecond),
		retry.RetryIf(isRetryableError),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			f.logger.DebugContext(ctx, "retrying HTTP request", "attempt", n+1, "url", req.URL.String(), "error", err)
		}),
	)
}

// isRetryableError returns true for transient errors that should be retried.
func isRetryableError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	}
	return true
}
