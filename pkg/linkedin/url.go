// Package linkedin validates, canonicalizes, and selects LinkedIn company page URLs.
package linkedin

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	// CanonicalHost replaces missing or foreign hosts during normalization.
	CanonicalHost = "www.linkedin.com"

	hostMarker    = "linkedin.com"
	companyPrefix = "/company/"
)

var companySlugPattern = regexp.MustCompile(`(?i)/company/([^/?#]+)`)

// Match returns true if the URL mentions a LinkedIn company page anywhere.
// It is a cheap pre-filter; use IsCompanyURL for validation.
func Match(urlStr string) bool {
	return strings.Contains(strings.ToLower(urlStr), hostMarker+companyPrefix)
}

// IsCompanyURL reports whether rawURL is an http(s) URL on a linkedin.com host
// whose path contains /company/. Empty or unparseable input is never valid.
func IsCompanyURL(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if !strings.Contains(strings.ToLower(u.Host), hostMarker) {
		return false
	}
	return strings.Contains(strings.ToLower(u.EscapedPath()), companyPrefix)
}

// NormalizeCompanyURL canonicalizes a LinkedIn URL: https scheme, lower-case
// www.linkedin.com host (foreign or missing hosts are replaced, not rejected),
// no query or fragment, and at most one trailing slash removed.
// Input that cannot be parsed is returned unchanged.
func NormalizeCompanyURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	host := strings.ToLower(u.Host)
	if host == "" || host == hostMarker || !strings.Contains(host, hostMarker) {
		host = CanonicalHost
	}

	path := u.EscapedPath()
	path = strings.TrimSuffix(path, "/")
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return "https://" + host + path
}

// CompanySlug returns the path segment following /company/, if any.
func CompanySlug(rawURL string) (string, bool) {
	m := companySlugPattern.FindStringSubmatch(rawURL)
	if len(m) < 2 || m[1] == "" {
		return "", false
	}
	return m[1], true
}
