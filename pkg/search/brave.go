package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/codeGROOVE-dev/companyfinder/pkg/htmlutil"
)

// DefaultBraveURL is the Brave Search web endpoint.
// Free tier: 2,000 queries/month, 1 query/second.
const DefaultBraveURL = "https://api.search.brave.com/res/v1/web/search"

// BraveSearcher queries the Brave Search API.
type BraveSearcher struct {
	fetcher Fetcher
	opts    options
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// NewBrave creates a Brave Search client. Without WithAPIKey the key comes from LoadBraveAPIKey.
func NewBrave(f Fetcher, opts ...Option) *BraveSearcher {
	o := newOptions(DefaultBraveURL, opts)
	if o.apiKey == "" {
		o.apiKey = LoadBraveAPIKey()
	}
	return &BraveSearcher{fetcher: f, opts: o}
}

// LoadBraveAPIKey reads BRAVE_API_KEY, then the first line of ~/.brave.
// Returns empty string if no key is found.
func LoadBraveAPIKey() string {
	if key := os.Getenv("BRAVE_API_KEY"); key != "" {
		return key
	}
	if home, err := os.UserHomeDir(); err == nil {
		if data, err := os.ReadFile(filepath.Join(home, ".brave")); err == nil {
			line, _, _ := strings.Cut(string(data), "\n")
			return strings.TrimSpace(line)
		}
	}
	return ""
}

// Search performs a web search using the Brave Search API.
func (b *BraveSearcher) Search(ctx context.Context, query string) ([]Result, error) {
	if b.opts.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	u, err := url.Parse(b.opts.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	if b.opts.limit > 0 {
		q.Set("count", strconv.Itoa(min(b.opts.limit, 20)))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.opts.apiKey)
	if b.opts.userAgent != "" {
		req.Header.Set("User-Agent", b.opts.userAgent)
	}

	b.opts.logger.DebugContext(ctx, "brave search", "query", query)

	data, err := b.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("brave search: %w", err)
	}
	return parseBrave(data, b.opts.limit)
}

func parseBrave(data []byte, limit int) ([]Result, error) {
	var br braveResponse
	if err := json.Unmarshal(data, &br); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	results := make([]Result, 0, len(br.Web.Results))
	for _, r := range br.Web.Results {
		if limit > 0 && len(results) == limit {
			break
		}
		results = append(results, Result{
			Title:   htmlutil.StripTags(r.Title),
			URL:     r.URL,
			Snippet: htmlutil.StripTags(r.Description),
		})
	}
	return results, nil
}
