package finder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/codeGROOVE-dev/companyfinder/pkg/linkedin"
	"github.com/codeGROOVE-dev/companyfinder/pkg/metrics"
	"github.com/codeGROOVE-dev/companyfinder/pkg/record"
	"github.com/codeGROOVE-dev/companyfinder/pkg/search"
)

// fakeSearcher answers from a map keyed by query.
type fakeSearcher struct {
	results map[string][]search.Result
	errs    map[string]error
	panics  map[string]string
	delay   time.Duration
	active  atomic.Int32
	peak    atomic.Int32
}

func (s *fakeSearcher) Search(_ context.Context, query string) ([]search.Result, error) {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(s.delay)

	if msg, ok := s.panics[query]; ok {
		panic(msg)
	}
	if err, ok := s.errs[query]; ok {
		return nil, err
	}
	return s.results[query], nil
}

var fixedTime = time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)

func discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

func TestRun(t *testing.T) {
	s := &fakeSearcher{
		results: map[string][]search.Result{
			"linkedin company Acme Corp": {
				{Title: "John Smith", URL: "https://www.linkedin.com/in/jsmith"},
				{Title: "Acme Corp | LinkedIn", URL: "http://linkedin.com/company/acme-corp/?trk=x"},
			},
			"linkedin company Initech": {
				{Title: "Initech careers", URL: "https://initech.example.com/jobs"},
			},
		},
		errs:   map[string]error{"linkedin company Globex": errors.New("HTTP 503")},
		panics: map[string]string{"linkedin company Umbrella": "kaboom"},
	}

	reg := prometheus.NewRegistry()
	rec := metrics.New(reg)
	f := New(s, WithLogger(discard()), WithClock(func() time.Time { return fixedTime }), WithMetrics(rec))

	got := f.Run(context.Background(), []string{"Acme Corp", "Globex", "Initech", "Umbrella"})

	ts := "2024-03-04T05:06:07.000000Z"
	want := []record.Record{
		{
			CompanyName: "Acme Corp",
			SearchQuery: "linkedin company Acme Corp",
			LinkedInURL: "https://www.linkedin.com/company/acme-corp",
			Info:        record.InfoFound,
			Timestamp:   ts,
			Extra: map[string]string{
				record.KeyResultTitle:     "Acme Corp | LinkedIn",
				record.KeyScore:           "1.000",
				record.KeyMatchConfidence: "1.000",
			},
		},
		{
			CompanyName: "Globex",
			SearchQuery: "linkedin company Globex",
			Info:        "Search error: HTTP 503",
			Timestamp:   ts,
		},
		{
			CompanyName: "Initech",
			SearchQuery: "linkedin company Initech",
			Info:        record.InfoNotFound,
			Timestamp:   ts,
		},
		{
			CompanyName: "Umbrella",
			SearchQuery: "linkedin company Umbrella",
			Info:        "Unexpected error: kaboom",
			Timestamp:   ts,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Run() mismatch (-want +got):\n%s", diff)
	}

	if n, err := testutil.GatherAndCount(reg, "companyfinder_selections_total"); err != nil || n != 3 {
		t.Errorf("selection outcome series = %d (err %v), want 3", n, err)
	}
}

func TestRunWithoutNormalization(t *testing.T) {
	s := &fakeSearcher{results: map[string][]search.Result{
		"acme": {{Title: "Acme", URL: "http://linkedin.com/company/acme/?trk=x"}},
	}}
	f := New(s, WithLogger(discard()), WithNormalize(false), WithQueryTemplate("{company}"))

	got := f.Lookup(context.Background(), "acme")
	if got.LinkedInURL != "http://linkedin.com/company/acme/?trk=x" {
		t.Errorf("LinkedInURL = %q, want raw URL", got.LinkedInURL)
	}
}

func TestRunFirstStrategy(t *testing.T) {
	s := &fakeSearcher{results: map[string][]search.Result{
		"linkedin company Acme": {
			{Title: "Globex", URL: "https://www.linkedin.com/company/globex/"},
			{Title: "Acme", URL: "https://www.linkedin.com/company/acme/"},
		},
	}}
	f := New(s, WithLogger(discard()), WithStrategy(linkedin.StrategyFirst))

	got := f.Lookup(context.Background(), "Acme")
	if got.LinkedInURL != "https://www.linkedin.com/company/globex" {
		t.Errorf("LinkedInURL = %q, want first company page", got.LinkedInURL)
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	s := &fakeSearcher{delay: 20 * time.Millisecond}
	f := New(s, WithLogger(discard()), WithWorkers(3))

	companies := make([]string, 12)
	for i := range companies {
		companies[i] = fmt.Sprintf("Company %d", i)
	}
	got := f.Run(context.Background(), companies)

	if len(got) != len(companies) {
		t.Fatalf("got %d records, want %d", len(got), len(companies))
	}
	for i, r := range got {
		if r.CompanyName != companies[i] {
			t.Errorf("record %d is %q, want %q", i, r.CompanyName, companies[i])
		}
	}
	if peak := s.peak.Load(); peak > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", peak)
	}
}

func TestRunEmpty(t *testing.T) {
	f := New(&fakeSearcher{}, WithLogger(discard()))
	if got := f.Run(context.Background(), nil); len(got) != 0 {
		t.Errorf("Run(nil) = %v, want empty", got)
	}
}

func TestRunLogsRunID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	f := New(&fakeSearcher{}, WithLogger(logger))
	f.Run(context.Background(), []string{"Acme"})

	if !strings.Contains(buf.String(), "run_id=") {
		t.Errorf("log output missing run_id:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "url=\"NO RESULT\"") {
		t.Errorf("log output missing NO RESULT marker:\n%s", buf.String())
	}
}

func TestValidate(t *testing.T) {
	f := New(&fakeSearcher{}, WithLogger(discard()))
	records := []record.Record{
		{CompanyName: "ok", LinkedInURL: "https://www.linkedin.com/company/ok", Extra: map[string]string{record.KeyMatchConfidence: "0.950"}},
		{CompanyName: "bad", LinkedInURL: "https://example.com/acme"},
		{CompanyName: "weak", LinkedInURL: "https://www.linkedin.com/company/xyz", Extra: map[string]string{record.KeyMatchConfidence: "0.400"}},
		{CompanyName: "none"},
	}

	got := f.Validate(records)
	want := Report{InvalidURLs: []string{"bad"}, LowConfidence: []string{"weak"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Validate() mismatch (-want +got):\n%s", diff)
	}
}
