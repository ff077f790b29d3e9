// Package metrics records Prometheus metrics for company lookups.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "companyfinder"

// Search statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Selection outcomes.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Recorder holds the lookup metrics. A nil *Recorder records nothing.
type Recorder struct {
	searches       *prometheus.CounterVec
	searchDuration *prometheus.HistogramVec
	selections     *prometheus.CounterVec
	candidates     prometheus.Histogram
	cacheLookups   *prometheus.CounterVec
}

// New creates a Recorder and registers its collectors with reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Search engine queries by engine and status",
		}, []string{"engine", "status"}),

		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Search engine query duration",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"engine"}),

		selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selections_total",
			Help:      "Company lookups by outcome",
		}, []string{"outcome"}),

		candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "candidates_per_search",
			Help:      "Search results considered per company",
			Buckets:   prometheus.LinearBuckets(0, 5, 6),
		}),

		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "HTTP cache hits and misses",
		}, []string{"result"}), // "hit" / "miss"
	}

	reg.MustRegister(r.searches, r.searchDuration, r.selections, r.candidates, r.cacheLookups)
	return r
}

// ObserveSearch records one search call.
func (r *Recorder) ObserveSearch(engine string, d time.Duration, err error) {
	if r == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	r.searches.WithLabelValues(engine, status).Inc()
	r.searchDuration.WithLabelValues(engine).Observe(d.Seconds())
}

// ObserveSelection records the outcome of one company and how many results it had.
func (r *Recorder) ObserveSelection(outcome string, candidates int) {
	if r == nil {
		return
	}
	r.selections.WithLabelValues(outcome).Inc()
	if outcome != OutcomeError {
		r.candidates.Observe(float64(candidates))
	}
}

// AddCacheStats adds hit and miss counts from an HTTP cache.
func (r *Recorder) AddCacheStats(hits, misses int64) {
	if r == nil {
		return
	}
	r.cacheLookups.WithLabelValues("hit").Add(float64(hits))
	r.cacheLookups.WithLabelValues("miss").Add(float64(misses))
}
