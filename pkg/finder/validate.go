package finder

import (
	"strconv"

	"github.com/codeGROOVE-dev/companyfinder/pkg/linkedin"
	"github.com/codeGROOVE-dev/companyfinder/pkg/record"
)

// Report counts suspicious records. Suspicious records are still exported.
type Report struct {
	InvalidURLs   []string
	LowConfidence []string
}

// Validate checks found URLs and their match confidence, logging a warning per category.
func (f *Finder) Validate(records []record.Record) Report {
	var rep Report
	for i := range records {
		r := &records[i]
		if r.LinkedInURL == "" {
			continue
		}
		if !linkedin.IsCompanyURL(r.LinkedInURL) {
			rep.InvalidURLs = append(rep.InvalidURLs, r.CompanyName)
			continue
		}
		if c, err := strconv.ParseFloat(r.Extra[record.KeyMatchConfidence], 64); err == nil && c < f.minConfidence {
			rep.LowConfidence = append(rep.LowConfidence, r.CompanyName)
		}
	}

	if n := len(rep.InvalidURLs); n > 0 {
		f.logger.Warn("results with invalid LinkedIn URLs will still be exported", "count", n, "companies", rep.InvalidURLs)
	}
	if n := len(rep.LowConfidence); n > 0 {
		f.logger.Warn("results with low match confidence", "count", n, "threshold", f.minConfidence, "companies", rep.LowConfidence)
	}
	return rep
}
