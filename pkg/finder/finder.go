// Package finder looks up LinkedIn company pages for a batch of companies.
package finder

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/codeGROOVE-dev/companyfinder/pkg/linkedin"
	"github.com/codeGROOVE-dev/companyfinder/pkg/metrics"
	"github.com/codeGROOVE-dev/companyfinder/pkg/record"
	"github.com/codeGROOVE-dev/companyfinder/pkg/search"
	"github.com/codeGROOVE-dev/companyfinder/pkg/textmatch"
)

// DefaultWorkers is the number of companies looked up concurrently.
const DefaultWorkers = 8

// DefaultMinConfidence is the match confidence below which Validate warns.
const DefaultMinConfidence = 0.6

// Finder runs one search-and-select unit of work per company.
type Finder struct {
	searcher      search.Searcher
	selector      *linkedin.Selector
	metrics       *metrics.Recorder
	logger        *slog.Logger
	now           func() time.Time
	engine        string
	queryTemplate string
	strategy      linkedin.Strategy
	workers       int
	minConfidence float64
	normalize     bool
}

// Option configures a Finder.
type Option func(*Finder)

// WithLogger sets a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Finder) { f.logger = logger }
}

// WithMetrics records lookups on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(f *Finder) { f.metrics = r }
}

// WithEngineName labels search metrics and logs.
func WithEngineName(name string) Option {
	return func(f *Finder) { f.engine = name }
}

// WithQueryTemplate sets the query template; see search.BuildQuery.
func WithQueryTemplate(tmpl string) Option {
	return func(f *Finder) { f.queryTemplate = tmpl }
}

// WithStrategy picks how candidates are chosen.
func WithStrategy(s linkedin.Strategy) Option {
	return func(f *Finder) { f.strategy = s }
}

// WithNormalize controls whether selected URLs are canonicalized before export.
func WithNormalize(normalize bool) Option {
	return func(f *Finder) { f.normalize = normalize }
}

// WithWorkers sets the pool size. Values below 1 become 1.
func WithWorkers(n int) Option {
	return func(f *Finder) { f.workers = max(1, n) }
}

// WithMinConfidence sets the Validate warning threshold.
func WithMinConfidence(c float64) Option {
	return func(f *Finder) { f.minConfidence = c }
}

// WithClock overrides time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(f *Finder) { f.now = now }
}

// New creates a Finder that searches with s.
func New(s search.Searcher, opts ...Option) *Finder {
	f := &Finder{
		searcher:      s,
		logger:        slog.Default(),
		now:           time.Now,
		engine:        string(search.DefaultEngine),
		queryTemplate: search.DefaultQueryTemplate,
		strategy:      linkedin.StrategyBest,
		workers:       DefaultWorkers,
		minConfidence: DefaultMinConfidence,
		normalize:     true,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.selector = linkedin.NewSelector(linkedin.WithSelectorLogger(f.logger))
	return f
}

// Run looks up every company and returns one record per company in input
// order. Failures become error records; a failing company never stops the batch.
func (f *Finder) Run(ctx context.Context, companies []string) []record.Record {
	runID := uuid.NewString()
	logger := f.logger.With("run_id", runID)
	logger.InfoContext(ctx, "processing companies", "count", len(companies), "workers", f.workers, "engine", f.engine)

	records := make([]record.Record, len(companies))
	var g errgroup.Group
	g.SetLimit(f.workers)
	for i, company := range companies {
		g.Go(func() error {
			records[i] = f.lookup(ctx, logger, company)
			url := records[i].LinkedInURL
			if url == "" {
				url = "NO RESULT"
			}
			logger.InfoContext(ctx, "processed company", "company", company, "url", url)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // units never return errors

	return records
}

// Lookup runs the unit of work for a single company.
func (f *Finder) Lookup(ctx context.Context, company string) record.Record {
	return f.lookup(ctx, f.logger, company)
}

func (f *Finder) lookup(ctx context.Context, logger *slog.Logger, company string) (rec record.Record) {
	query := search.BuildQuery(f.queryTemplate, company)
	rec = record.Record{
		CompanyName: company,
		SearchQuery: query,
		Timestamp:   record.Timestamp(f.now()),
	}

	defer func() {
		if p := recover(); p != nil {
			logger.ErrorContext(ctx, "unexpected error while processing company",
				"company", company, "panic", p, "stack", string(debug.Stack()))
			rec.LinkedInURL = ""
			rec.Extra = nil
			rec.Info = fmt.Sprintf("%s%v", record.InfoUnexpectedError, p)
			f.metrics.ObserveSelection(metrics.OutcomeError, 0)
		}
	}()

	start := time.Now()
	results, err := f.searcher.Search(ctx, query)
	f.metrics.ObserveSearch(f.engine, time.Since(start), err)
	if err != nil {
		logger.WarnContext(ctx, "search failed", "company", company, "error", err)
		rec.Info = record.InfoSearchError + err.Error()
		f.metrics.ObserveSelection(metrics.OutcomeError, 0)
		return rec
	}

	sel := f.selector.Select(f.strategy, company, results)
	if !sel.Found() {
		rec.Info = record.InfoNotFound
		f.metrics.ObserveSelection(metrics.OutcomeNotFound, len(results))
		return rec
	}

	rec.LinkedInURL = sel.URL
	if f.normalize {
		rec.LinkedInURL = linkedin.NormalizeCompanyURL(sel.URL)
	}
	rec.Info = record.InfoFound
	rec.SetExtra(record.KeyResultTitle, sel.Result.Title)
	rec.SetExtra(record.KeyScore, strconv.FormatFloat(sel.Score, 'f', 3, 64))
	rec.SetExtra(record.KeyMatchConfidence, strconv.FormatFloat(confidence(company, sel.URL), 'f', 3, 64))
	f.metrics.ObserveSelection(metrics.OutcomeFound, len(results))

	logger.DebugContext(ctx, "search result", "company", company, "url", rec.LinkedInURL, "info", rec.Info)
	return rec
}

func confidence(company, url string) float64 {
	slug, ok := linkedin.CompanySlug(url)
	if !ok {
		return 0
	}
	return textmatch.Confidence(textmatch.Normalize(company), textmatch.Normalize(slug))
}
