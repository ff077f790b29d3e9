package search

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/codeGROOVE-dev/companyfinder/pkg/htmlutil"
)

// DefaultDuckDuckGoURL is the HTML-only DuckDuckGo endpoint.
const DefaultDuckDuckGoURL = "https://duckduckgo.com/html/"

// DuckDuckGoSearcher scrapes the DuckDuckGo HTML results page.
type DuckDuckGoSearcher struct {
	fetcher Fetcher
	opts    options
}

// NewDuckDuckGo creates a DuckDuckGo scraper that fetches pages through f.
func NewDuckDuckGo(f Fetcher, opts ...Option) *DuckDuckGoSearcher {
	return &DuckDuckGoSearcher{fetcher: f, opts: newOptions(DefaultDuckDuckGoURL, opts)}
}

// Search fetches the results page for query and returns its organic results in page order.
func (d *DuckDuckGoSearcher) Search(ctx context.Context, query string) ([]Result, error) {
	u, err := url.Parse(d.opts.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if d.opts.userAgent != "" {
		req.Header.Set("User-Agent", d.opts.userAgent)
	}

	d.opts.logger.DebugContext(ctx, "duckduckgo search", "query", query)

	body, err := d.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch results: %w", err)
	}

	return parseDuckDuckGo(body, d.opts.limit)
}

func parseDuckDuckGo(body []byte, limit int) ([]Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var results []Result
	doc.Find("a.result__a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		if !ok || href == "" {
			return true
		}
		r := Result{
			Title: strings.Join(strings.Fields(a.Text()), " "),
			URL:   htmlutil.UnwrapRedirect(href),
		}
		if snippet := a.Closest("div.result").Find(".result__snippet").First(); snippet.Length() > 0 {
			r.Snippet = strings.Join(strings.Fields(snippet.Text()), " ")
		}
		results = append(results, r)
		return limit <= 0 || len(results) < limit
	})

	return results, nil
}
