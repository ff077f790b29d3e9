// Package search queries public search engines for LinkedIn company pages.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// DefaultQueryTemplate is the query sent for each company when none is configured.
const DefaultQueryTemplate = "linkedin company {company}"

var (
	ErrUnknownEngine = errors.New("unknown search engine")
	ErrMissingAPIKey = errors.New("search engine requires an API key")
)

// Result is a single organic search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// Searcher returns ordered results for a query. An empty slice is a valid answer.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// Fetcher returns the body of a successful GET request.
// *httpcache.Fetcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, req *http.Request) ([]byte, error)
}

// Engine identifies a search backend.
type Engine string

const (
	DuckDuckGo Engine = "duckduckgo"
	Brave      Engine = "brave"
)

// DefaultEngine is used when no engine is configured.
const DefaultEngine = DuckDuckGo

// ParseEngine maps a configured name to an Engine. An empty name selects DefaultEngine.
func ParseEngine(name string) (Engine, error) {
	switch e := Engine(strings.ToLower(strings.TrimSpace(name))); e {
	case "":
		return DefaultEngine, nil
	case DuckDuckGo, Brave:
		return e, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
}

// BuildQuery substitutes company into template. A template without the
// {company} placeholder gets the company appended.
func BuildQuery(template, company string) string {
	if template == "" {
		template = DefaultQueryTemplate
	}
	if strings.Contains(template, "{company}") {
		return strings.TrimSpace(strings.ReplaceAll(template, "{company}", company))
	}
	return strings.TrimSpace(template + " " + company)
}

type options struct {
	logger    *slog.Logger
	baseURL   string
	userAgent string
	apiKey    string
	limit     int
}

// Option configures a searcher.
type Option func(*options)

// WithLogger sets a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithBaseURL overrides the engine endpoint.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithUserAgent sets the User-Agent header sent with each query.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithAPIKey sets the API key for engines that need one.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithLimit caps the number of results returned per query. Zero means no cap.
func WithLimit(n int) Option {
	return func(o *options) { o.limit = n }
}

func newOptions(baseURL string, opts []Option) options {
	o := options{logger: slog.Default(), baseURL: baseURL}
	for _, opt := range opts {
		opt(&o)
	}
	if o.baseURL == "" {
		o.baseURL = baseURL
	}
	return o
}

// New returns the Searcher for engine.
func New(engine Engine, f Fetcher, opts ...Option) (Searcher, error) {
	switch engine {
	case DuckDuckGo, "":
		return NewDuckDuckGo(f, opts...), nil
	case Brave:
		b := NewBrave(f, opts...)
		if b.opts.apiKey == "" {
			return nil, ErrMissingAPIKey
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
}
