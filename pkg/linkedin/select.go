package linkedin

import (
	"log/slog"

	"github.com/codeGROOVE-dev/companyfinder/pkg/search"
	"github.com/codeGROOVE-dev/companyfinder/pkg/textmatch"
)

// Selection is the outcome of choosing among search results.
// A zero Selection means no company page matched.
type Selection struct {
	Result *search.Result
	URL    string
	Score  float64
}

// Found reports whether a company page was selected.
func (s Selection) Found() bool { return s.URL != "" }

// Strategy picks how a Selector chooses among candidates.
type Strategy string

const (
	// StrategyBest scores every company page against the company name.
	StrategyBest Strategy = "best"
	// StrategyFirst takes the first valid company page and normalizes it.
	StrategyFirst Strategy = "first"
)

// Selector chooses a LinkedIn company page from search results.
// It holds no mutable state and is safe for concurrent use.
type Selector struct {
	logger *slog.Logger
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithSelectorLogger sets a logger for candidate scoring output.
func WithSelectorLogger(logger *slog.Logger) SelectorOption {
	return func(s *Selector) { s.logger = logger }
}

// NewSelector creates a Selector. Without a logger it stays silent.
func NewSelector(opts ...SelectorOption) *Selector {
	s := &Selector{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectBestCompanyURL is Selector.Best without logging.
func SelectBestCompanyURL(companyName string, results []search.Result) Selection {
	return NewSelector().Best(companyName, results)
}

// Select dispatches to Best or First. Unknown strategies fall back to Best.
func (s *Selector) Select(strategy Strategy, companyName string, results []search.Result) Selection {
	if strategy == StrategyFirst {
		return s.First(companyName, results)
	}
	return s.Best(companyName, results)
}

// Best returns the company page whose title or slug is most similar to
// companyName. Results are scanned in order and only a strictly higher score
// replaces the current winner, so ties keep the earliest result. The URL is
// returned exactly as found.
func (s *Selector) Best(companyName string, results []search.Result) Selection {
	name := textmatch.Normalize(companyName)

	var best Selection
	for i := range results {
		r := &results[i]
		if !IsCompanyURL(r.URL) {
			s.logger.Debug("skipping non-company URL", "url", r.URL)
			continue
		}

		var titleScore float64
		if title := textmatch.Normalize(r.Title); title != "" {
			titleScore = textmatch.Ratio(name, title)
		}

		var slugScore float64
		if slug, ok := CompanySlug(r.URL); ok {
			if norm := textmatch.Normalize(slug); norm != "" {
				slugScore = textmatch.Ratio(name, norm)
			}
		}

		score := max(titleScore, slugScore)
		s.logger.Debug("scored candidate",
			"url", r.URL, "title_score", titleScore, "slug_score", slugScore, "score", score)

		if score > best.Score {
			winner := *r
			best = Selection{URL: r.URL, Result: &winner, Score: score}
		}
	}

	if best.Found() {
		s.logger.Info("selected company page", "company", companyName, "url", best.URL, "score", best.Score)
	} else {
		s.logger.Warn("no company page matched", "company", companyName, "candidates", len(results))
	}
	return best
}

// First returns the first valid company page, normalized. Its score is the
// name similarity of that page, for reporting only.
func (s *Selector) First(companyName string, results []search.Result) Selection {
	for i := range results {
		r := &results[i]
		if !Match(r.URL) || !IsCompanyURL(r.URL) {
			continue
		}
		var score float64
		if slug, ok := CompanySlug(r.URL); ok {
			score = textmatch.Ratio(textmatch.Normalize(companyName), textmatch.Normalize(slug))
		}
		s.logger.Info("selected first company page", "company", companyName, "url", r.URL)
		winner := *r
		return Selection{URL: NormalizeCompanyURL(r.URL), Result: &winner, Score: score}
	}
	s.logger.Warn("no company page found", "company", companyName, "candidates", len(results))
	return Selection{}
}
