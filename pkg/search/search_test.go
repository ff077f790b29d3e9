package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/codeGROOVE-dev/companyfinder/pkg/httpcache"
)

const ddgPage = `<html><body>
<div class="result results_links web-result">
  <h2 class="result__title">
    <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.linkedin.com%2Fcompany%2Facme-corp%2F&rut=abc">Acme Corp | <b>LinkedIn</b></a>
  </h2>
  <a class="result__snippet" href="#">Acme Corp builds
     rockets.</a>
</div>
<div class="result">
  <a class="result__a" href="https://www.linkedin.com/in/wile-e">Wile E. Coyote</a>
</div>
<div class="result">
  <a class="result__a">No href</a>
</div>
<div class="result">
  <a class="result__a" href="https://acme.example.com/">Acme Home</a>
  <div class="result__snippet">Official site</div>
</div>
</body></html>`

func newTestFetcher() *httpcache.Fetcher {
	return httpcache.NewFetcher(
		httpcache.WithRateLimiter(httpcache.NewRateLimiter(0)),
		httpcache.WithRetry(1, 5*time.Second),
	)
}

func TestDuckDuckGoSearch(t *testing.T) {
	var gotQuery, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(ddgPage)) //nolint:errcheck // test server
	}))
	defer server.Close()

	s := NewDuckDuckGo(newTestFetcher(), WithBaseURL(server.URL+"/html/"), WithUserAgent("test-agent"))
	results, err := s.Search(context.Background(), "linkedin company Acme Corp")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if gotQuery != "linkedin company Acme Corp" {
		t.Errorf("query = %q", gotQuery)
	}
	if gotUA != "test-agent" {
		t.Errorf("User-Agent = %q", gotUA)
	}

	want := []Result{
		{Title: "Acme Corp | LinkedIn", URL: "https://www.linkedin.com/company/acme-corp/", Snippet: "Acme Corp builds rockets."},
		{Title: "Wile E. Coyote", URL: "https://www.linkedin.com/in/wile-e"},
		{Title: "Acme Home", URL: "https://acme.example.com/", Snippet: "Official site"},
	}
	if diff := cmp.Diff(want, results); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestDuckDuckGoLimit(t *testing.T) {
	results, err := parseDuckDuckGo([]byte(ddgPage), 2)
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[1].URL != "https://www.linkedin.com/in/wile-e" {
		t.Errorf("second result = %q", results[1].URL)
	}
}

func TestDuckDuckGoEmptyPage(t *testing.T) {
	results, err := parseDuckDuckGo([]byte("<html><body>No results.</body></html>"), 10)
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestDuckDuckGoHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	s := NewDuckDuckGo(newTestFetcher(), WithBaseURL(server.URL))
	_, err := s.Search(context.Background(), "acme")
	var httpErr *httpcache.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusForbidden {
		t.Errorf("Search() error = %v, want HTTP 403", err)
	}
}

func TestBraveSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Subscription-Token") != "test-key" {
			t.Errorf("expected X-Subscription-Token header")
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("expected Accept header")
		}
		if got := r.URL.Query().Get("count"); got != "2" {
			t.Errorf("count = %q, want 2", got)
		}
		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck // test server
		_, _ = w.Write([]byte(`{"web":{"results":[
			{"title":"<strong>Acme</strong> Corp | LinkedIn","url":"https://www.linkedin.com/company/acme","description":"Makers of &amp; things"},
			{"title":"Acme Blog","url":"https://blog.acme.example","description":""},
			{"title":"Third","url":"https://example.com/3","description":""}
		]}}`))
	}))
	defer server.Close()

	s := NewBrave(newTestFetcher(), WithAPIKey("test-key"), WithBaseURL(server.URL), WithLimit(2))
	results, err := s.Search(context.Background(), "linkedin company Acme")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	want := []Result{
		{Title: "Acme Corp | LinkedIn", URL: "https://www.linkedin.com/company/acme", Snippet: "Makers of & things"},
		{Title: "Acme Blog", URL: "https://blog.acme.example"},
	}
	if diff := cmp.Diff(want, results); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestBraveInvalidJSON(t *testing.T) {
	if _, err := parseBrave([]byte("not json"), 0); err == nil {
		t.Error("expected decode error")
	}
}

func TestLoadBraveAPIKey(t *testing.T) {
	t.Run("env", func(t *testing.T) {
		t.Setenv("BRAVE_API_KEY", "from-env")
		if got := LoadBraveAPIKey(); got != "from-env" {
			t.Errorf("LoadBraveAPIKey() = %q", got)
		}
	})

	t.Run("file", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		t.Setenv("BRAVE_API_KEY", "")
		if err := os.WriteFile(filepath.Join(home, ".brave"), []byte("  from-file \nsecond\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		if got := LoadBraveAPIKey(); got != "from-file" {
			t.Errorf("LoadBraveAPIKey() = %q", got)
		}
	})

	t.Run("none", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		t.Setenv("BRAVE_API_KEY", "")
		if got := LoadBraveAPIKey(); got != "" {
			t.Errorf("LoadBraveAPIKey() = %q, want empty", got)
		}
	})
}

func TestNew(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BRAVE_API_KEY", "")
	f := newTestFetcher()

	if s, err := New(DuckDuckGo, f); err != nil {
		t.Errorf("New(duckduckgo) error = %v", err)
	} else if _, ok := s.(*DuckDuckGoSearcher); !ok {
		t.Errorf("New(duckduckgo) = %T", s)
	}

	if _, err := New(Brave, f); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("New(brave) without key error = %v, want ErrMissingAPIKey", err)
	}
	if _, err := New(Brave, f, WithAPIKey("k")); err != nil {
		t.Errorf("New(brave) error = %v", err)
	}
	if _, err := New("bing", f); !errors.Is(err, ErrUnknownEngine) {
		t.Errorf("New(bing) error = %v, want ErrUnknownEngine", err)
	}
}

func TestParseEngine(t *testing.T) {
	tests := []struct {
		in      string
		want    Engine
		wantErr bool
	}{
		{"", DuckDuckGo, false},
		{"duckduckgo", DuckDuckGo, false},
		{" Brave ", Brave, false},
		{"google", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEngine(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEngine(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseEngine(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		template string
		company  string
		want     string
	}{
		{"", "Acme Corp", "linkedin company Acme Corp"},
		{"site:linkedin.com/company {company}", "Acme", "site:linkedin.com/company Acme"},
		{"{company} {company}", "X", "X X"},
		{"linkedin", "Acme", "linkedin Acme"},
	}
	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			if got := BuildQuery(tt.template, tt.company); got != tt.want {
				t.Errorf("BuildQuery(%q, %q) = %q, want %q", tt.template, tt.company, got, tt.want)
			}
		})
	}
}
